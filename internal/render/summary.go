package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sourceplane/liteprov/internal/model"
	"gopkg.in/yaml.v3"
)

// Encode writes v as json or yaml
func Encode(w io.Writer, v interface{}, format string) error {
	var data []byte
	var err error

	switch format {
	case "json":
		data, err = json.MarshalIndent(v, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case "yaml", "yml":
		data, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", format, err)
	}

	_, err = w.Write(data)
	return err
}

// Summary describes a completed (or partially completed) run
func Summary(result *model.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Environment: %s\n", result.Environment)
	if result.Subscription.ID != "" {
		fmt.Fprintf(&sb, "Subscription: %s (%s)\n", result.Subscription.Name, result.Subscription.ID)
	}

	if len(result.Identities) > 0 {
		sb.WriteString("\nIdentities:\n")
		for _, id := range result.Identities {
			fmt.Fprintf(&sb, "  %-24s %-10s app=%s principal=%s\n", id.DisplayName, outcome(&id), id.AppID, id.PrincipalID)
		}
	}

	if len(result.Assignments) > 0 {
		sb.WriteString("\nRole assignments:\n")
		for _, a := range result.Assignments {
			state := "held"
			if a.Assigned {
				state = "assigned"
			}
			fmt.Fprintf(&sb, "  %-28s %s\n", a.Role, state)
		}
	}

	if result.Platform != nil {
		fmt.Fprintf(&sb, "\nPlatform environment: %s (%s)\n", result.Platform.URL, result.Platform.Source)
	}

	if len(result.Persisted) > 0 {
		fmt.Fprintf(&sb, "\nSaved: %s\n", strings.Join(result.Persisted, ", "))
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(&sb, "Warning: %s\n", w)
	}
	fmt.Fprintf(&sb, "Resources created: %d\n", result.Created())

	return sb.String()
}

// Inspection describes what a provision run would find and create
func Inspection(in *model.Inspection) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Environment: %s\n\n", in.Environment)

	for _, id := range in.Identities {
		fmt.Fprintf(&sb, "[%s] %s\n", id.Role, id.DisplayName)
		if id.RegistrationFound {
			fmt.Fprintf(&sb, "  application:       found (%s)\n", id.AppID)
		} else {
			sb.WriteString("  application:       will be created\n")
		}
		if id.PrincipalFound {
			fmt.Fprintf(&sb, "  service principal: found (%s)\n", id.PrincipalID)
		} else {
			sb.WriteString("  service principal: will be created\n")
		}
	}

	if len(in.Roles) > 0 {
		sb.WriteString("\nRole assignments:\n")
		for _, r := range in.Roles {
			state := "will be assigned"
			if r.Held {
				state = "held"
			}
			fmt.Fprintf(&sb, "  %-28s %s\n", r.Role, state)
		}
	}

	return sb.String()
}

// Variables lists environment variables sorted by key, masking secrets
func Variables(values map[string]string, showSecrets bool) string {
	if !showSecrets {
		values = MaskSecrets(values)
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s=%q\n", k, values[k])
	}
	return sb.String()
}

// MaskSecrets returns a copy of values with non-empty secrets replaced
func MaskSecrets(values map[string]string) map[string]string {
	masked := make(map[string]string, len(values))
	for k, v := range values {
		if model.SecretVariables[k] && v != "" {
			v = "********"
		}
		masked[k] = v
	}
	return masked
}

func outcome(id *model.Identity) string {
	if id.Created() == 0 {
		return "found"
	}
	return "created"
}
