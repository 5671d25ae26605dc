// Package components renders the UI fragments streamed to the page.
package components

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	streamui "github.com/haowjy/meridian-streamui-go"
)

// KindWeather marks the final fragment of a weather tool call.
const KindWeather streamui.FragmentKind = "weather"

// LoadingText is shown while a tool is running.
const LoadingText = "Getting weather..."

var templates = template.Must(template.New("components").Parse(`
{{define "text"}}<div>{{.}}</div>{{end}}
{{define "loading"}}<div class="animate-pulse p-4">{{.}}</div>{{end}}
{{define "weather"}}<div class="border border-neutral-200 p-4 rounded-lg w-full">The weather in {{.Location}} is {{.Weather}}</div>{{end}}
{{define "error"}}<div role="alert" class="border border-red-300 bg-red-50 text-red-800 p-4 rounded-lg w-full"><strong>Something went wrong.</strong> {{.}}</div>{{end}}
`))

func render(name string, data any) string {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		// Templates are fixed and data is always a string or weatherData
		panic(fmt.Sprintf("components: render %s: %v", name, err))
	}
	return buf.String()
}

// Text renders the model's answer as-is.
func Text(content string) streamui.Fragment {
	return streamui.Fragment{
		Kind: streamui.FragmentText,
		Text: content,
		HTML: render("text", content),
	}
}

// Loading renders the weather placeholder.
func Loading() streamui.Fragment {
	return streamui.Fragment{
		Kind: streamui.FragmentLoading,
		Text: LoadingText,
		HTML: render("loading", LoadingText),
	}
}

type weatherData struct {
	Location string
	Weather  string
}

// Weather renders a finished weather reading for a location.
func Weather(location, weather string) streamui.Fragment {
	return streamui.Fragment{
		Kind: KindWeather,
		Text: fmt.Sprintf("The weather in %s is %s", location, weather),
		HTML: render("weather", weatherData{Location: location, Weather: weather}),
	}
}

// Error renders a failed request. Only the first line of the error is shown,
// followed by a hint when the error class suggests one.
func Error(err error) streamui.Fragment {
	message := "unknown error"
	if err != nil {
		message, _, _ = strings.Cut(err.Error(), "\n")
		if hint := errorHint(err); hint != "" {
			message += ". " + hint
		}
	}
	return streamui.Fragment{
		Kind: streamui.FragmentError,
		Text: message,
		HTML: render("error", message),
	}
}

func errorHint(err error) string {
	switch {
	case streamui.IsAuthError(err):
		return "Check the API key."
	case streamui.IsRetryable(err):
		return "Try again in a moment."
	default:
		return ""
	}
}
