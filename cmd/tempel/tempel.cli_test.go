package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/itsatony/go-tempel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test data constants
const (
	testTemplateContent = "Hello {{ name }}! {% for f in friends %}<{{f}}>{% endfor %}"
	testDataJSON        = `{"name": "Bob", "friends": ["x", "y"]}`
	testDataYAML        = "name: Cy\nfriends:\n  - p\n  - q\n"
	testExpectedJSON    = "Hello Bob! <x><y>"
	testInvalidContent  = "{{ {{ }} }}"
)

// setupTestData creates test files in a temp directory
func setupTestData(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	files := map[string]string{
		"template.txt": testTemplateContent,
		"data.json":    testDataJSON,
		"data.yaml":    testDataYAML,
		"invalid.txt":  testInvalidContent,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, name), []byte(content), FilePermissions))
	}

	return tmpDir
}

func runCLI(args []string, stdin string) (int, string, string) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	exitCode := run(args, strings.NewReader(stdin), stdout, stderr)
	return exitCode, stdout.String(), stderr.String()
}

// ==================== run() dispatch tests ====================

func TestRun_NoArgs_ShowsHelp(t *testing.T) {
	exitCode, stdout, _ := runCLI(nil, "")

	assert.Equal(t, ExitCodeSuccess, exitCode)
	assert.Contains(t, stdout, CLIName)
	assert.Contains(t, stdout, CmdNameRender)
}

func TestRun_HelpCommand(t *testing.T) {
	exitCode, stdout, _ := runCLI([]string{CmdNameHelp}, "")

	assert.Equal(t, ExitCodeSuccess, exitCode)
	assert.Contains(t, stdout, HelpMainUsage)
}

func TestRun_UnknownCommand(t *testing.T) {
	exitCode, stdout, _ := runCLI([]string{"unknown"}, "")

	assert.Equal(t, ExitCodeUsageError, exitCode)
	assert.Contains(t, stdout, ErrMsgUnknownCommand)
}

// ==================== Help command tests ====================

func TestHelp_Commands(t *testing.T) {
	tests := []struct {
		cmd      string
		expected string
	}{
		{cmd: CmdNameRender, expected: HelpRenderUsage},
		{cmd: CmdNameValidate, expected: HelpValidateUsage},
		{cmd: CmdNameVersion, expected: HelpVersionUsage},
		{cmd: CmdNameHelp, expected: HelpHelpUsage},
		{cmd: HelpTopicSyntax, expected: HelpSyntaxUsage},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			stdout := &bytes.Buffer{}

			exitCode := runHelp([]string{tt.cmd}, stdout)

			assert.Equal(t, ExitCodeSuccess, exitCode)
			assert.Contains(t, stdout.String(), tt.expected)
		})
	}
}

func TestHelp_UnknownTopic(t *testing.T) {
	tests := []struct {
		name       string
		topic      string
		suggestion string
	}{
		{name: "prefix", topic: "rend", suggestion: CmdNameRender},
		{name: "upper case prefix", topic: "VALID", suggestion: CmdNameValidate},
		{name: "longer than topic", topic: "syntaxes", suggestion: HelpTopicSyntax},
		{name: "ambiguous prefix takes first", topic: "ve", suggestion: CmdNameVersion},
		{name: "single letter", topic: "r", suggestion: ""},
		{name: "no match", topic: "deploy", suggestion: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.suggestion, suggestTopic(tt.topic))

			exitCode, stdout, _ := runCLI([]string{CmdNameHelp, tt.topic}, "")
			assert.Equal(t, ExitCodeUsageError, exitCode)
			assert.Contains(t, stdout, ErrMsgUnknownCommand+": "+tt.topic)
			if tt.suggestion != "" {
				assert.Contains(t, stdout, fmt.Sprintf(HelpFmtSuggestion, tt.suggestion))
			} else {
				assert.NotContains(t, stdout, "Did you mean")
			}
		})
	}
}

func TestRun_Aliases(t *testing.T) {
	tests := []struct {
		args     []string
		expected string
	}{
		{args: []string{AliasHelpShort}, expected: HelpMainUsage},
		{args: []string{AliasHelpLong, HelpTopicSyntax}, expected: HelpSyntaxUsage},
		{args: []string{AliasVersionShort}, expected: "go-tempel version"},
		{args: []string{AliasVersionLong}, expected: "go-tempel version"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			exitCode, stdout, _ := runCLI(tt.args, "")
			assert.Equal(t, ExitCodeSuccess, exitCode)
			assert.Contains(t, stdout, tt.expected)
		})
	}
}

func TestHelp_SyntaxExampleRenders(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menu.txt")
	require.NoError(t, os.WriteFile(path, []byte("Today: {% for dish in dishes %}{{ dish }}; {% endfor %}by {{ chef }}"), FilePermissions))

	exitCode, stdout, stderr := runCLI([]string{CmdNameRender, "-t", path, "--list", "dishes=soup,pie", "--var", "chef=Ana"}, "")
	require.Equal(t, ExitCodeSuccess, exitCode, stderr)
	assert.Equal(t, "Today: soup; pie; by Ana", strings.TrimRight(stdout, "\n"))
	assert.Contains(t, HelpSyntaxUsage, "Today: soup; pie; by Ana")
}

// ==================== Version command tests ====================

func TestVersion_Text(t *testing.T) {
	exitCode, stdout, _ := runCLI([]string{CmdNameVersion}, "")

	assert.Equal(t, ExitCodeSuccess, exitCode)
	assert.Contains(t, stdout, CLIName)
}

func TestVersion_JSON(t *testing.T) {
	exitCode, stdout, _ := runCLI([]string{CmdNameVersion, "-F", OutputFormatJSON}, "")
	require.Equal(t, ExitCodeSuccess, exitCode)

	var info versionInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

func TestVersion_InvalidFormat(t *testing.T) {
	exitCode, _, stderr := runCLI([]string{CmdNameVersion, "--format", "xml"}, "")

	assert.Equal(t, ExitCodeUsageError, exitCode)
	assert.Contains(t, stderr, ErrMsgInvalidFormat)
}

func TestGetVersionInfo(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, VersionsFileName)
	content := `project:
  name: go-tempel
  version: 1.2.3
git:
  commit: abc123
  branch: main
build:
  time: "2026-01-02T03:04:05Z"
`
	require.NoError(t, os.WriteFile(path, []byte(content), FilePermissions))

	t.Run("first readable file wins", func(t *testing.T) {
		info := getVersionInfo([]string{filepath.Join(tmpDir, "missing.yaml"), path})

		assert.Equal(t, "1.2.3", info.Version)
		assert.Equal(t, "abc123", info.Commit)
		assert.Equal(t, "main", info.Branch)
		assert.Equal(t, "2026-01-02T03:04:05Z", info.BuildTime)
		assert.Equal(t, runtime.Version(), info.GoVersion)
	})

	t.Run("repository file", func(t *testing.T) {
		info := getVersionInfo(versionSearchPaths())

		assert.NotEqual(t, VersionUnknown, info.Version)
		assert.Equal(t, "main", info.Branch)
		assert.Equal(t, runtime.Version(), info.GoVersion)
	})

	t.Run("no file", func(t *testing.T) {
		info := getVersionInfo([]string{filepath.Join(tmpDir, "missing.yaml")})

		assert.Equal(t, VersionUnknown, info.Version)
		assert.Equal(t, VersionUnknown, info.Commit)
	})
}

// ==================== Render command tests ====================

func TestRender_Sources(t *testing.T) {
	tmpDir := setupTestData(t)
	templatePath := filepath.Join(tmpDir, "template.txt")

	tests := []struct {
		name     string
		args     []string
		stdin    string
		expected string
	}{
		{
			name:     "var and list flags",
			args:     []string{"-t", templatePath, "--var", "name=Alice", "--list", "friends=a,b"},
			expected: "Hello Alice! <a><b>",
		},
		{
			name:     "inline json",
			args:     []string{"-t", templatePath, "-d", testDataJSON},
			expected: testExpectedJSON,
		},
		{
			name:     "json file",
			args:     []string{"--template", templatePath, "--data-file", filepath.Join(tmpDir, "data.json")},
			expected: testExpectedJSON,
		},
		{
			name:     "yaml file",
			args:     []string{"-t", templatePath, "-f", filepath.Join(tmpDir, "data.yaml")},
			expected: "Hello Cy! <p><q>",
		},
		{
			name:     "flags override data",
			args:     []string{"-t", templatePath, "-d", testDataJSON, "--var", "name=Zed", "--list", "friends="},
			expected: "Hello Zed! ",
		},
		{
			name:     "template from stdin",
			args:     []string{"-t", InputSourceStdin, "-d", `{"who": "Dee", "n": 3}`},
			stdin:    "Hi {{who}} x{{ n }} {{unbound}}",
			expected: "Hi Dee x3 {{unbound}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exitCode, stdout, stderr := runCLI(append([]string{CmdNameRender}, tt.args...), tt.stdin)

			require.Equal(t, ExitCodeSuccess, exitCode, stderr)
			assert.Equal(t, tt.expected, stdout)
		})
	}
}

func TestRender_JSONNumbersVerbatim(t *testing.T) {
	tmpDir := setupTestData(t)
	dataPath := filepath.Join(tmpDir, "numbers.json")
	data := `{"id": 12345678, "big": 10000000000000000000000, "ratio": 0.25, "ports": [8080, 65535]}`
	require.NoError(t, os.WriteFile(dataPath, []byte(data), FilePermissions))

	source := "id={{id}} big={{big}} ratio={{ratio}} ports={{ports}}{% for p in ports %} :{{p}}{% endfor %}"
	expected := "id=12345678 big=10000000000000000000000 ratio=0.25 ports=[8080, 65535] :8080 :65535"

	t.Run("inline", func(t *testing.T) {
		exitCode, stdout, stderr := runCLI([]string{CmdNameRender, "-t", InputSourceStdin, "-d", data}, source)

		require.Equal(t, ExitCodeSuccess, exitCode, stderr)
		assert.Equal(t, expected, stdout)
	})

	t.Run("file", func(t *testing.T) {
		exitCode, stdout, stderr := runCLI([]string{CmdNameRender, "-t", InputSourceStdin, "-f", dataPath}, source)

		require.Equal(t, ExitCodeSuccess, exitCode, stderr)
		assert.Equal(t, expected, stdout)
	})
}

func TestRender_OutputFile(t *testing.T) {
	tmpDir := setupTestData(t)
	outPath := filepath.Join(tmpDir, "out.txt")

	exitCode, stdout, stderr := runCLI([]string{
		CmdNameRender, "-t", filepath.Join(tmpDir, "template.txt"), "-d", testDataJSON, "-o", outPath,
	}, "")

	require.Equal(t, ExitCodeSuccess, exitCode, stderr)
	assert.Empty(t, stdout)

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, testExpectedJSON, string(content))
}

func TestRender_MissingList(t *testing.T) {
	tmpDir := setupTestData(t)
	templatePath := filepath.Join(tmpDir, "template.txt")

	t.Run("fails by default", func(t *testing.T) {
		exitCode, stdout, stderr := runCLI([]string{CmdNameRender, "-t", templatePath, "--var", "name=Al"}, "")

		assert.Equal(t, ExitCodeError, exitCode)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, ErrMsgRenderFailed)
	})

	t.Run("lenient renders empty", func(t *testing.T) {
		exitCode, stdout, stderr := runCLI([]string{CmdNameRender, "-t", templatePath, "--var", "name=Al", "--lenient"}, "")

		require.Equal(t, ExitCodeSuccess, exitCode, stderr)
		assert.Equal(t, "Hello Al! ", stdout)
	})
}

func TestRender_Errors(t *testing.T) {
	tmpDir := setupTestData(t)
	templatePath := filepath.Join(tmpDir, "template.txt")

	tests := []struct {
		name     string
		args     []string
		exitCode int
		stderr   string
	}{
		{name: "missing template flag", args: nil, exitCode: ExitCodeUsageError, stderr: ErrMsgMissingTemplate},
		{name: "unknown flag", args: []string{"-t", templatePath, "--bogus"}, exitCode: ExitCodeUsageError, stderr: ErrMsgInvalidArguments},
		{name: "binding without assign", args: []string{"-t", templatePath, "--var", "name"}, exitCode: ExitCodeUsageError, stderr: ErrMsgInvalidBinding},
		{name: "binding without name", args: []string{"-t", templatePath, "--list", "=a,b"}, exitCode: ExitCodeUsageError, stderr: ErrMsgEmptyBindingName},
		{name: "invalid json", args: []string{"-t", templatePath, "-d", "{nope"}, exitCode: ExitCodeInputError, stderr: ErrMsgInvalidData},
		{name: "data conflict", args: []string{"-t", templatePath, "-d", "{}", "-f", filepath.Join(tmpDir, "data.json")}, exitCode: ExitCodeInputError, stderr: ErrMsgDataConflict},
		{name: "missing data file", args: []string{"-t", templatePath, "-f", filepath.Join(tmpDir, "nope.json")}, exitCode: ExitCodeInputError, stderr: ErrMsgInvalidData},
		{name: "missing template file", args: []string{"-t", filepath.Join(tmpDir, "nope.txt")}, exitCode: ExitCodeInputError, stderr: ErrMsgReadFileFailed},
		{name: "invalid template", args: []string{"-t", filepath.Join(tmpDir, "invalid.txt")}, exitCode: ExitCodeValidationError, stderr: ErrMsgCompileFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exitCode, stdout, stderr := runCLI(append([]string{CmdNameRender}, tt.args...), "")

			assert.Equal(t, tt.exitCode, exitCode)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tt.stderr)
		})
	}
}

func TestRender_Verbose(t *testing.T) {
	tmpDir := setupTestData(t)

	exitCode, stdout, stderr := runCLI([]string{
		CmdNameRender, "-t", filepath.Join(tmpDir, "template.txt"), "-d", testDataJSON, "-v",
	}, "")

	require.Equal(t, ExitCodeSuccess, exitCode)
	assert.Equal(t, testExpectedJSON, stdout)
	assert.Contains(t, stderr, tempel.LogMsgCompileStart)
	assert.Contains(t, stderr, tempel.LogMsgRenderEnd)
}

// ==================== Validate command tests ====================

func TestValidate_ValidText(t *testing.T) {
	tmpDir := setupTestData(t)

	exitCode, stdout, _ := runCLI([]string{CmdNameValidate, "-t", filepath.Join(tmpDir, "template.txt")}, "")

	assert.Equal(t, ExitCodeSuccess, exitCode)
	assert.Contains(t, stdout, ValidationTextSuccess)
	assert.Contains(t, stdout, "Variables: name, f")
	assert.Contains(t, stdout, "Loops: f in friends")
}

func TestValidate_NoVariablesText(t *testing.T) {
	exitCode, stdout, _ := runCLI([]string{CmdNameValidate, "-t", InputSourceStdin}, "plain text")

	assert.Equal(t, ExitCodeSuccess, exitCode)
	assert.Contains(t, stdout, "Variables: "+ValidationTextNone)
	assert.Contains(t, stdout, "Loops: "+ValidationTextNone)
}

func TestValidate_ValidJSON(t *testing.T) {
	tmpDir := setupTestData(t)

	exitCode, stdout, _ := runCLI([]string{CmdNameValidate, "-t", filepath.Join(tmpDir, "template.txt"), "-F", OutputFormatJSON}, "")
	require.Equal(t, ExitCodeSuccess, exitCode)

	var out validationOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.True(t, out.Valid)
	assert.Equal(t, []string{"name", "f"}, out.Variables)
	assert.Equal(t, []validationLoopOutput{{Item: "f", List: "friends"}}, out.Loops)
	assert.Nil(t, out.Error)
}

func TestValidate_InvalidJSON(t *testing.T) {
	tmpDir := setupTestData(t)

	exitCode, stdout, _ := runCLI([]string{CmdNameValidate, "-t", filepath.Join(tmpDir, "invalid.txt"), "--format", OutputFormatJSON}, "")
	require.Equal(t, ExitCodeValidationError, exitCode)

	var out validationOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.False(t, out.Valid)
	require.NotNil(t, out.Error)
	require.NotNil(t, out.Error.Start)
	require.NotNil(t, out.Error.End)
	assert.Equal(t, 0, *out.Error.Start)
	assert.Equal(t, 4, *out.Error.End)
}

func TestValidate_InvalidText(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "unbalanced", source: "{{a}"},
		{name: "nested loop", source: "{% for a in as %}{% for b in bs %}{% endfor %}{% endfor %}"},
		{name: "unclosed loop", source: "{% for a in as %}{{a}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exitCode, stdout, _ := runCLI([]string{CmdNameValidate, "-t", InputSourceStdin}, tt.source)

			assert.Equal(t, ExitCodeValidationError, exitCode)
			assert.Contains(t, stdout, ValidationTextInvalid)
		})
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		exitCode int
	}{
		{name: "missing template flag", args: nil, exitCode: ExitCodeUsageError},
		{name: "invalid format", args: []string{"-t", "x.txt", "-F", "xml"}, exitCode: ExitCodeUsageError},
		{name: "missing file", args: []string{"-t", filepath.Join(t.TempDir(), "nope.txt")}, exitCode: ExitCodeInputError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exitCode, _, _ := runCLI(append([]string{CmdNameValidate}, tt.args...), "")
			assert.Equal(t, tt.exitCode, exitCode)
		})
	}
}

// ==================== Input helper tests ====================

func TestSplitBinding(t *testing.T) {
	tests := []struct {
		raw      string
		name     string
		value    string
		hasError bool
	}{
		{raw: "a=b", name: "a", value: "b"},
		{raw: " a =b=c", name: "a", value: "b=c"},
		{raw: "a=", name: "a", value: ""},
		{raw: "a", hasError: true},
		{raw: " =b", hasError: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			name, value, err := splitBinding(tt.raw)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestApplyBindingFlags(t *testing.T) {
	base := tempel.NewBindings(tempel.Var("keep", "k"), tempel.Var("name", "old"))

	bindings, err := applyBindingFlags(base, []string{"name=new"}, []string{"xs=a,b", "empty="})
	require.NoError(t, err)

	assert.Equal(t, "k", bindings["keep"].String())
	assert.Equal(t, "new", bindings["name"].String())
	assert.Equal(t, []string{"a", "b"}, bindings["xs"].Items())
	assert.True(t, bindings["empty"].IsList())
	assert.Empty(t, bindings["empty"].Items())

	// The input set is left as it was.
	assert.Equal(t, "old", base["name"].String())
}

func TestDecodeJSONData(t *testing.T) {
	data, err := decodeJSONData([]byte(`{"n": 12345678}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("12345678"), data["n"])

	_, err = decodeJSONData([]byte(`[1, 2]`))
	assert.Error(t, err)
}

func TestLoadData_Empty(t *testing.T) {
	bindings, err := loadData("", "")
	require.NoError(t, err)
	assert.Empty(t, bindings)
}

func TestArrayFlags(t *testing.T) {
	var af arrayFlags
	require.NoError(t, af.Set("a=1"))
	require.NoError(t, af.Set("b=2"))

	assert.Equal(t, []string{"a=1", "b=2"}, []string(af))
	assert.Equal(t, "a=1,b=2", af.String())
}
