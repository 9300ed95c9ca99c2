package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	q := ReturnQuery{Pay: "  success ", Pid: " 42 "}
	SanitizeStruct(&q)

	assert.Equal(t, "success", q.Pay)
	assert.Equal(t, "42", q.Pid)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	q := ReturnQuery{Pid: "<script>alert('x')</script>"}
	SanitizeStruct(&q)

	assert.Contains(t, q.Pid, "&lt;script&gt;")
	assert.NotContains(t, q.Pid, "<script>")
}

func TestSanitizeStruct_HandlesPointerString(t *testing.T) {
	notes := "  manual  "
	resp := ApplicationResponse{ID: "42", Notes: &notes}
	SanitizeStruct(&resp)

	assert.Equal(t, "manual", *resp.Notes)
}

func TestSanitizeStruct_NilPointerIsNoOp(t *testing.T) {
	resp := ApplicationResponse{ID: "42"}
	SanitizeStruct(&resp)
	assert.Nil(t, resp.Notes)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- ReturnQuery tests ---

func TestReturnQuery_Normalize(t *testing.T) {
	q := ReturnQuery{Pay: " CANCEL ", Pid: " 42 "}
	q.Normalize()

	assert.Equal(t, "cancel", q.Pay)
	assert.Equal(t, "42", q.Pid)
	assert.NoError(t, Validate(&q))
}

func TestReturnQuery_Validate(t *testing.T) {
	tests := []struct {
		name  string
		query ReturnQuery
		ok    bool
	}{
		{"success", ReturnQuery{Pay: "success", Pid: "42"}, true},
		{"uuid pid", ReturnQuery{Pay: "cancel", Pid: "3f2b6c1e-8d4a-4c2b-9e11-5a7d0c9b2f10"}, true},
		{"unknown outcome", ReturnQuery{Pay: "refund", Pid: "42"}, false},
		{"missing pay", ReturnQuery{Pid: "42"}, false},
		{"missing pid", ReturnQuery{Pay: "success"}, false},
		{"unsafe pid", ReturnQuery{Pay: "success", Pid: "42;DROP"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.query)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestMarkPaidRequest_RequiresPassword(t *testing.T) {
	assert.Error(t, Validate(&MarkPaidRequest{}))
	assert.NoError(t, Validate(&MarkPaidRequest{AdminPassword: "s3cret"}))
}

// --- Custom Validator tests ---

func TestSafeID_Valid(t *testing.T) {
	cases := []string{
		"ref-001",
		"REF_002",
		"a.b.c",
		"simple123",
		"ABC-def_GHI.123",
	}
	for _, tc := range cases {
		assert.True(t, safeStringRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestSafeID_Invalid(t *testing.T) {
	cases := []string{
		"ref 001",     // space
		"ref<001>",    // angle brackets
		"ref;DROP",    // semicolon
		"",            // empty
		"hello world", // space
		"ref\n001",    // newline
	}
	for _, tc := range cases {
		assert.False(t, safeStringRe.MatchString(tc), "expected invalid: %s", tc)
	}
}
