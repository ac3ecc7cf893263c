// Package tool provides the tool registry and its execute boundary.
//
// A [Registry] maps tool names to a schema and a [Handler]. It is built once
// at startup and shared read-only by every run. [Registry.Execute] never
// fails: an unknown tool, a returned error, a panic, or an output shaped
// like {"error": "..."} or {"success": false} all become a Failure
// [Outcome]; anything else is a Success.
//
// # Typed tools
//
// Define arguments as a struct with tags and register with [Func] or
// [RegisterFunc]:
//
//	type WeatherArgs struct {
//	    Location string `json:"location" desc:"City name" required:"true"`
//	    Unit     string `json:"unit" desc:"Temperature unit" enum:"celsius,fahrenheit"`
//	}
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("get_weather", "Get current weather",
//	        func(ctx context.Context, args WeatherArgs) (any, error) {
//	            return map[string]any{"temp": 21, "location": args.Location}, nil
//	        }),
//	)
//
// # Bundled tools
//
// [Builtin] returns calc and current_time. [Workspace] adds read_file and
// search_files confined to one directory, and [HTTPTool] makes requests to
// an allow-listed set of hosts.
//
// # Transcript text
//
// A [Renderer] turns an Outcome into the text the model sees. Output is
// rendered as canonical JSON and fields carrying binary payloads (images,
// screenshots, base64 blobs) are dropped from the text. The raw value stays
// available as the result data.
package tool
