package tool

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// CalcArgs are the arguments of the calc tool.
type CalcArgs struct {
	Op string  `json:"op" desc:"Operation to apply" enum:"add,sub,mul,div" required:"true"`
	A  float64 `json:"a" desc:"Left operand" required:"true"`
	B  float64 `json:"b" desc:"Right operand" required:"true"`
}

// CalcResult is the output of the calc tool.
type CalcResult struct {
	Result float64 `json:"result"`
}

// Calculator returns the calc tool: basic arithmetic on two operands.
// Division by zero is reported in the output as {"error": ...}.
func Calculator() Registration {
	return Func("calc", "Apply a basic arithmetic operation to two numbers",
		func(ctx context.Context, args CalcArgs) (any, error) {
			switch args.Op {
			case "add":
				return CalcResult{Result: args.A + args.B}, nil
			case "sub":
				return CalcResult{Result: args.A - args.B}, nil
			case "mul":
				return CalcResult{Result: args.A * args.B}, nil
			case "div":
				if args.B == 0 {
					return map[string]any{"error": "division by zero"}, nil
				}
				return CalcResult{Result: args.A / args.B}, nil
			case "":
				return nil, errors.New("op is required")
			default:
				return nil, fmt.Errorf("unsupported op %q", args.Op)
			}
		})
}

// ClockArgs are the arguments of the current_time tool.
type ClockArgs struct {
	Timezone string `json:"timezone" desc:"IANA timezone name, UTC when empty"`
}

// Clock returns the current_time tool. now may be nil to use time.Now.
func Clock(now func() time.Time) Registration {
	if now == nil {
		now = time.Now
	}
	return Func("current_time", "Get the current date and time",
		func(ctx context.Context, args ClockArgs) (any, error) {
			loc := time.UTC
			if args.Timezone != "" {
				l, err := time.LoadLocation(args.Timezone)
				if err != nil {
					return nil, err
				}
				loc = l
			}
			t := now().In(loc)
			return map[string]any{
				"time":     t.Format(time.RFC3339),
				"timezone": loc.String(),
				"weekday":  t.Weekday().String(),
			}, nil
		})
}

// Builtin returns the tools every deployment can offer without external
// services: calc and current_time.
func Builtin() []Registration {
	return []Registration{Calculator(), Clock(nil)}
}
