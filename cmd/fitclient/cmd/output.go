package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fitness-app/fitclient/internal/adapter/outbound/api"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// printValue writes v in the selected output format. v is first brought to
// its JSON shape so both formats use the same field names.
func printValue(w io.Writer, v any) error {
	plain, err := toPlain(v)
	if err != nil {
		return err
	}
	switch outputFormat {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(plain); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case formatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plain)
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", outputFormat)
	}
}

// printResponse prints a backend response: decoded JSON in the output format,
// anything else as text.
func printResponse(w io.Writer, resp *api.Response) error {
	if resp.Data == nil {
		if text := strings.TrimSpace(resp.Text()); text != "" {
			_, err := fmt.Fprintln(w, text)
			return err
		}
		return nil
	}
	return printValue(w, resp.Data)
}

// printMessage prints a one-line confirmation.
func printMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

// toPlain round-trips v through JSON into maps, slices and plain numbers.
func toPlain(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	return plainNumbers(out), nil
}

// plainNumbers replaces json.Number with int64 or float64 so YAML does not
// quote them.
func plainNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		for k, item := range val {
			val[k] = plainNumbers(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = plainNumbers(item)
		}
		return val
	default:
		return v
	}
}

// readData decodes a --data value: inline JSON, @file, or @- for stdin.
// The payload is sent as given.
func readData(stdin io.Reader, raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	data := []byte(raw)
	if name, ok := strings.CutPrefix(raw, "@"); ok {
		var err error
		if name == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(name)
		}
		if err != nil {
			return nil, fmt.Errorf("read --data: %w", err)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("--data is not valid JSON: %w", err)
	}
	return payload, nil
}
