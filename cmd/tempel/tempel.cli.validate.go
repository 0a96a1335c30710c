package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/itsatony/go-tempel"
)

// validateConfig holds parsed validate command configuration
type validateConfig struct {
	templatePath string
	format       string
}

// validationOutput represents JSON output for validation
type validationOutput struct {
	Valid     bool                   `json:"valid"`
	Variables []string               `json:"variables"`
	Loops     []validationLoopOutput `json:"loops"`
	Error     *validationErrorOutput `json:"error,omitempty"`
}

type validationLoopOutput struct {
	Item string `json:"item"`
	List string `json:"list"`
}

type validationErrorOutput struct {
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Start   *int   `json:"start,omitempty"`
	End     *int   `json:"end,omitempty"`
}

func runValidate(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseValidateFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidArguments, err)
		return ExitCodeUsageError
	}

	source, err := readInput(cfg.templatePath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}

	tmpl, compileErr := tempel.Compile(string(source))
	output := buildValidationOutput(tmpl, compileErr)

	if cfg.format == OutputFormatJSON {
		jsonBytes, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgJSONMarshalFailed, err)
			return ExitCodeError
		}
		fmt.Fprintln(stdout, string(jsonBytes))
	} else {
		outputValidationText(output, stdout)
	}

	if !output.Valid {
		return ExitCodeValidationError
	}
	return ExitCodeSuccess
}

func buildValidationOutput(tmpl *tempel.Template, compileErr error) *validationOutput {
	output := &validationOutput{
		Valid:     compileErr == nil,
		Variables: []string{},
		Loops:     []validationLoopOutput{},
	}

	if compileErr != nil {
		errOut := &validationErrorOutput{Message: compileErr.Error()}
		if pos, ok := tempel.ErrorPosition(compileErr); ok {
			errOut.Line = pos.Line
			errOut.Column = pos.Column
		}
		if start, end, ok := tempel.FormatErrorRange(compileErr); ok {
			errOut.Start = &start
			errOut.End = &end
		}
		output.Error = errOut
		return output
	}

	output.Variables = tmpl.Variables()
	for _, loop := range tmpl.Loops() {
		output.Loops = append(output.Loops, validationLoopOutput{Item: loop.Item, List: loop.List})
	}
	return output
}

func outputValidationText(output *validationOutput, stdout io.Writer) {
	if !output.Valid {
		fmt.Fprintf(stdout, FmtErrorWithDetail, ValidationTextInvalid, output.Error.Message)
		if output.Error.Line > 0 {
			fmt.Fprintf(stdout, ValidationTextPosition+FmtNewline, output.Error.Line, output.Error.Column)
		}
		if output.Error.Start != nil && output.Error.End != nil {
			fmt.Fprintf(stdout, ValidationTextRange+FmtNewline, *output.Error.Start, *output.Error.End)
		}
		return
	}

	fmt.Fprintln(stdout, ValidationTextSuccess)
	fmt.Fprintf(stdout, ValidationTextVariables+FmtNewline, joinOrNone(output.Variables))

	loops := make([]string, 0, len(output.Loops))
	for _, loop := range output.Loops {
		loops = append(loops, fmt.Sprintf(ValidationTextLoop, loop.Item, loop.List))
	}
	fmt.Fprintf(stdout, ValidationTextLoops+FmtNewline, joinOrNone(loops))
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return ValidationTextNone
	}
	return strings.Join(items, ValidationTextJoin)
}

func parseValidateFlags(args []string) (*validateConfig, error) {
	fs := flag.NewFlagSet(CmdNameValidate, flag.ContinueOnError)
	fs.SetOutput(io.Discard) // Suppress default error messages

	cfg := &validateConfig{}

	fs.StringVar(&cfg.templatePath, FlagTemplate, "", "")
	fs.StringVar(&cfg.templatePath, FlagTemplateShort, "", "")
	fs.StringVar(&cfg.format, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(&cfg.format, FlagFormatShort, FlagDefaultFormat, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.templatePath == "" {
		return nil, errors.New(ErrMsgMissingTemplate)
	}

	if cfg.format != OutputFormatText && cfg.format != OutputFormatJSON {
		return nil, errors.New(ErrMsgInvalidFormat)
	}

	return cfg, nil
}
