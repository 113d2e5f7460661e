package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *UserError
		expected string
	}{
		{
			name:     "message only",
			err:      &UserError{Code: ErrCodeConfigNotFound, Message: "configuration file not found"},
			expected: "configuration file not found",
		},
		{
			name: "message with context",
			err: &UserError{
				Code:       ErrCodeValidationFailed,
				Message:    "root directory is required",
				Context:    "root",
				Suggestion: "set root",
			},
			expected: "root directory is required (at root)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestUserError_Format(t *testing.T) {
	t.Parallel()

	err := NewConfigNotFoundError("provision.yaml")
	formatted := err.Format()

	assert.Contains(t, formatted, "[CONFIG_NOT_FOUND]")
	assert.Contains(t, formatted, "Location: provision.yaml")
	assert.Contains(t, formatted, "Suggestion: Pass the manifest with 'provisioner run -c <file>'")
}

func TestUserError_IsAndUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("toml: expected newline")
	err := NewConfigParseError("provision.toml", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, &UserError{Code: ErrCodeConfigParse})
	assert.NotErrorIs(t, err, &UserError{Code: ErrCodeConfigNotFound})
	assert.Contains(t, err.Suggestion, "[[steps]]")
}

func TestUserError_WithCopies(t *testing.T) {
	t.Parallel()

	original := NewValidationFailedError("steps[0].name", "name is required")

	withContext := original.WithContext("provision.yaml")
	withSuggestion := original.WithSuggestion("Name the step")

	assert.Equal(t, "provision.yaml", withContext.Context)
	assert.Equal(t, "Name the step", withSuggestion.Suggestion)
	assert.Equal(t, "steps[0].name", original.Context)
	assert.Empty(t, original.Suggestion)
}

func TestErrorList(t *testing.T) {
	t.Parallel()

	list := NewErrorList()
	assert.False(t, list.HasErrors())
	assert.NoError(t, list.AsError())
	assert.Empty(t, list.Error())

	list.AddValidation("steps[0].actions[1]", "no action set", "Use one of: fetch.")
	list.Add(nil)
	require.Equal(t, 1, list.Len())
	assert.Equal(t, "steps[0].actions[1]: no action set (at steps[0].actions[1])", list.Error())

	list.Add(NewUndefinedVariableError("steps[1].actions[0].fetch", "zlib_version"))
	assert.Contains(t, list.Error(), "2 errors occurred")
	assert.Contains(t, list.Error(), "undefined variable ${zlib_version}")

	formatted := list.Format()
	assert.Contains(t, formatted, "Found 2 error(s)")
	assert.Contains(t, formatted, "[VALIDATION_FAILED]")
	assert.Contains(t, formatted, "[UNDEFINED_VARIABLE]")

	errs := list.Errors()
	errs[0] = nil
	assert.NotNil(t, list.Errors()[0])

	var asList *ErrorList
	require.ErrorAs(t, list.AsError(), &asList)
}

func TestIsUserError(t *testing.T) {
	t.Parallel()

	err := NewToolsParseError("tools.ini", errors.New("unclosed section"))
	assert.True(t, IsUserError(err, ErrCodeToolsParse))
	assert.False(t, IsUserError(err, ErrCodeConfigParse))
	assert.False(t, IsUserError(errors.New("plain"), ErrCodeToolsParse))

	require.NotNil(t, GetUserError(err))
	assert.Nil(t, GetUserError(errors.New("plain")))
}

func TestNewYAMLParseError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		err             error
		expectedMessage string
		expectedContext string
		suggestionHas   string
	}{
		{
			name:            "unknown action key",
			err:             errors.New("yaml: unmarshal errors:\n  line 7: field fetchh not found in type config.ActionSpec"),
			expectedMessage: "unknown action key",
			expectedContext: "provision.yaml (line 7)",
			suggestionHas:   "copy_tree",
		},
		{
			name:            "unknown top-level key",
			err:             errors.New("yaml: unmarshal errors:\n  line 2: field roots not found in type config.Manifest"),
			expectedMessage: "unknown configuration key",
			expectedContext: "provision.yaml (line 2)",
			suggestionHas:   "env_file",
		},
		{
			name:            "copy given a string",
			err:             errors.New("yaml: unmarshal errors:\n  line 9: cannot unmarshal !!str `zlib.h` into config.PathPair"),
			expectedMessage: "expected from/to paths",
			expectedContext: "provision.yaml (line 9)",
			suggestionHas:   "from",
		},
		{
			name:            "seq into map",
			err:             errors.New("yaml: unmarshal errors:\n  line 3: cannot unmarshal !!seq into map[string]string"),
			expectedMessage: "expected an object but found a list",
			expectedContext: "provision.yaml (line 3)",
			suggestionHas:   "key: value",
		},
		{
			name:            "missing key",
			err:             errors.New("yaml: did not find expected key"),
			expectedMessage: "missing required field or incorrect indentation",
			expectedContext: "provision.yaml",
			suggestionHas:   "2 spaces",
		},
		{
			name:            "generic",
			err:             errors.New("yaml: some other error"),
			expectedMessage: "invalid YAML syntax",
			expectedContext: "provision.yaml",
			suggestionHas:   "YAML syntax",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			userErr := NewYAMLParseError("provision.yaml", tt.err)

			assert.Equal(t, ErrCodeConfigParse, userErr.Code)
			assert.Equal(t, tt.expectedMessage, userErr.Message)
			assert.Equal(t, tt.expectedContext, userErr.Context)
			assert.Contains(t, userErr.Suggestion, tt.suggestionHas)
			assert.ErrorIs(t, userErr, tt.err)
		})
	}
}
