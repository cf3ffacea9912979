package emitter

import (
	"fmt"
	"strings"
	"text/template"

	"k6gen/internal/filter"
	"k6gen/internal/tracker"
)

// Stage is one ramp step of the emitted load profile.
type Stage struct {
	Duration string
	Target   int
	Comment  string
}

// DefaultStages returns the documentation-level default ramp profile. It is
// not derived from the spec.
func DefaultStages() []Stage {
	return []Stage{
		{Duration: "30s", Target: 10, Comment: "Ramp up"},
		{Duration: "1m", Target: 10, Comment: "Stay at 10 users"},
		{Duration: "30s", Target: 0, Comment: "Ramp down"},
	}
}

// Config carries the generation-time knobs for the emitted script.
type Config struct {
	// BaseURL is baked in as the fallback for the runtime-overridable
	// __ENV.BASE_URL parameter.
	BaseURL string
	// AuthKey is an optional literal secret. When empty the script defers
	// entirely to __ENV.AUTH_KEY and omits the header if that is unset too.
	AuthKey string
	Stages  []Stage
	Sleep   string
}

var scaffoldTmpl = template.Must(template.New("scaffold").Parse(`import http from 'k6/http';
import { check, sleep } from 'k6';
import { Rate } from 'k6/metrics';

// Error rate metric
const errorRate = new Rate('errors');

// Shared state for tracked values across VUs
const trackedValues = {};

export const options = {
    stages: [
{{- range .Stages }}
        { duration: '{{ .Duration }}', target: {{ .Target }} },  // {{ .Comment }}
{{- end }}
    ],
    thresholds: {
        'http_req_duration': ['p(95)<500'],
        'errors': ['rate<0.1'],
    },
};

export default function () {
    const baseUrl = __ENV.BASE_URL || '{{ .BaseURL }}';
    const authKey = __ENV.AUTH_KEY || {{ .AuthFallback }};
`))

// Generate renders the filtered, ordered operation set into one
// self-contained k6 script. Output is byte-for-byte deterministic for
// identical input and configuration.
func Generate(operations []filter.Included, table *tracker.Table, cfg Config) (string, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost"
	}
	if len(cfg.Stages) == 0 {
		cfg.Stages = DefaultStages()
	}
	if cfg.Sleep == "" {
		cfg.Sleep = "0.5"
	}

	authFallback := "null"
	if cfg.AuthKey != "" {
		authFallback = jsString(cfg.AuthKey)
	}

	var b strings.Builder
	data := struct {
		Stages       []Stage
		BaseURL      string
		AuthFallback string
	}{cfg.Stages, cfg.BaseURL, authFallback}
	if err := scaffoldTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render script scaffold: %w", err)
	}

	for i, op := range operations {
		writeOperation(&b, i, op, table)
	}

	b.WriteString("\n    // Small sleep between requests\n")
	fmt.Fprintf(&b, "    sleep(%s);\n}\n", cfg.Sleep)

	return b.String(), nil
}

// writeOperation emits the request block for one operation: resolved URL,
// headers, optional body, the call itself, a status check feeding the error
// rate, and tracking code when the operation is a producer.
func writeOperation(b *strings.Builder, i int, op filter.Included, table *tracker.Table) {
	fmt.Fprintf(b, "\n    // %s: %s %s\n", op.OperationID, op.Method, op.Path)
	fmt.Fprintf(b, "    const url%d = baseUrl + `%s`;\n", i, resolvePath(op, table))

	fmt.Fprintf(b, "    const headers%d = {\n", i)
	if bodiedMethod(op.Method) {
		b.WriteString("        'Content-Type': 'application/json',\n")
	}
	if op.InjectAuth {
		b.WriteString("        ...(authKey ? { 'Authorization': `Bearer ${authKey}` } : {}),\n")
	}
	b.WriteString("    };\n")

	bodyVar := ""
	if bodiedMethod(op.Method) && op.HasBody() {
		bodyVar = fmt.Sprintf("body%d", i)
		writeBody(b, bodyVar, op.BodyProperties)
	}

	fn := methodFunc(op.Method)
	switch {
	case bodyVar != "":
		fmt.Fprintf(b, "    const res%d = http.%s(url%d, JSON.stringify(%s), { headers: headers%d });\n", i, fn, i, bodyVar, i)
	case bodiedMethod(op.Method) || op.Method == "DELETE":
		fmt.Fprintf(b, "    const res%d = http.%s(url%d, null, { headers: headers%d });\n", i, fn, i, i)
	default:
		fmt.Fprintf(b, "    const res%d = http.%s(url%d, { headers: headers%d });\n", i, fn, i, i)
	}

	fmt.Fprintf(b, "    const success%d = check(res%d, {\n", i, i)
	b.WriteString("        'status is 2xx or 3xx': (r) => r.status >= 200 && r.status < 400,\n")
	b.WriteString("    });\n")
	fmt.Fprintf(b, "    errorRate.add(!success%d);\n", i)

	for _, binding := range table.ProducedBy(op.SourceIndex) {
		writeTracker(b, i, binding)
	}
}

// resolvePath substitutes each placeholder with a shared-state lookup when a
// binding resolves, and with the placeholder name itself otherwise. Bound
// lookups still carry the literal fallback so a missing state value at run
// time degrades instead of failing.
func resolvePath(op filter.Included, table *tracker.Table) string {
	resolved := op.Path
	for _, name := range tracker.Placeholders(op.Path) {
		replacement := name
		if binding, ok := table.Resolve(op.SourceIndex, name); ok {
			replacement = fmt.Sprintf("${trackedValues.%s || '%s'}", binding.StateKey, name)
		}
		resolved = strings.ReplaceAll(resolved, "{"+name+"}", replacement)
	}
	return resolved
}

// writeTracker emits the guarded extraction block storing a produced
// response field into the shared state object. Extraction failures never
// abort the script; the state key is simply left untouched.
func writeTracker(b *strings.Builder, i int, binding tracker.Binding) {
	fmt.Fprintf(b, "    try {\n")
	fmt.Fprintf(b, "        if (res%d.status === 201 || res%d.status === 200) {\n", i, i)
	fmt.Fprintf(b, "            const json%d = res%d.json();\n", i, i)
	fmt.Fprintf(b, "            if (json%d && json%d.%s !== undefined && json%d.%s !== null) {\n",
		i, i, binding.Field, i, binding.Field)
	fmt.Fprintf(b, "                trackedValues.%s = json%d.%s;\n", binding.StateKey, i, binding.Field)
	fmt.Fprintf(b, "                console.log(`Tracked %s: ${json%d.%s}`);\n", binding.StateKey, i, binding.Field)
	b.WriteString("            }\n")
	b.WriteString("        }\n")
	b.WriteString("    } catch (e) {\n")
	b.WriteString("        // Response might not be JSON\n")
	b.WriteString("    }\n")
}

func bodiedMethod(method string) bool {
	return method == "POST" || method == "PUT" || method == "PATCH"
}

// methodFunc maps an HTTP method to the k6 http module function name.
func methodFunc(method string) string {
	if method == "DELETE" {
		return "del"
	}
	return strings.ToLower(method)
}

func jsString(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, "'", `\'`)
	return "'" + escaped + "'"
}
