package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/itsatony/go-tempel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// arrayFlags collects every occurrence of a repeatable flag
type arrayFlags []string

func (af *arrayFlags) String() string {
	return strings.Join(*af, BindingListSeparator)
}

func (af *arrayFlags) Set(value string) error {
	*af = append(*af, value)
	return nil
}

// readInput reads content from a file or stdin
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(path)
}

// writeOutput writes content to a file or stdout
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == FlagDefaultOutput {
		_, err := stdout.Write(data)
		return err
	}

	return os.WriteFile(path, data, FilePermissions)
}

// newLogger returns a development logger on stderr when verbose is set
func newLogger(verbose bool, stderr io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}

	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(stderr), zapcore.DebugLevel)
	return zap.New(core, zap.Development())
}

// loadData decodes bindings from an inline JSON object or a JSON/YAML file.
// YAML is chosen by the file extension.
func loadData(jsonStr, filePath string) (tempel.Bindings, error) {
	if jsonStr != "" && filePath != "" {
		return nil, errors.New(ErrMsgDataConflict)
	}

	var data map[string]any
	switch {
	case filePath != "":
		raw, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		ext := strings.ToLower(filepath.Ext(filePath))
		if ext == DataFileExtYAML || ext == DataFileExtYML {
			err = yaml.Unmarshal(raw, &data)
		} else {
			data, err = decodeJSONData(raw)
		}
		if err != nil {
			return nil, err
		}
	case jsonStr != "":
		var err error
		if data, err = decodeJSONData([]byte(jsonStr)); err != nil {
			return nil, err
		}
	}

	return tempel.BindingsFromMap(data), nil
}

// decodeJSONData decodes a JSON object keeping numbers as json.Number, so
// integers render as written instead of in float notation.
func decodeJSONData(raw []byte) (map[string]any, error) {
	var data map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

// applyBindingFlags adds --var scalars and --list lists on top of bindings.
func applyBindingFlags(bindings tempel.Bindings, vars, lists []string) (tempel.Bindings, error) {
	for _, raw := range vars {
		name, value, err := splitBinding(raw)
		if err != nil {
			return nil, err
		}
		bindings = bindings.With(name, tempel.Scalar(value))
	}

	for _, raw := range lists {
		name, value, err := splitBinding(raw)
		if err != nil {
			return nil, err
		}
		var items []string
		if value != "" {
			items = strings.Split(value, BindingListSeparator)
		}
		bindings = bindings.With(name, tempel.List(items...))
	}

	return bindings, nil
}

func splitBinding(raw string) (string, string, error) {
	name, value, ok := strings.Cut(raw, BindingAssign)
	if !ok {
		return "", "", errors.New(ErrMsgInvalidBinding + ": " + raw)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", errors.New(ErrMsgEmptyBindingName)
	}
	return name, value, nil
}
