package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeNotFound, "match 42 not found")
	if !stderrors.Is(err, New(CodeNotFound, "record not found")) {
		t.Fatal("errors with the same code should match")
	}
	if stderrors.Is(err, New(CodeStorage, "record not found")) {
		t.Fatal("errors with different codes should not match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeStorage, "insert performance", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("wrapped cause should be reachable via errors.Is")
	}
	if err.Error() != "insert performance" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestCodeOfTraversesWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeUpgradeSelfEdge, "edge 5 -> 5"))
	if got := CodeOf(err); got != CodeUpgradeSelfEdge {
		t.Fatalf("code = %s, want %s", got, CodeUpgradeSelfEdge)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("code = %s, want %s", got, CodeUnknown)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{New(CodeNotFound, "missing"), http.StatusNotFound},
		{New(CodeInvalidArgument, "bad range"), http.StatusBadRequest},
		{New(CodeUpgradeUnknownItem, "item 9"), http.StatusBadRequest},
		{New(CodeIngestFetchFailed, "metadata fetch"), http.StatusBadGateway},
		{New(CodeStorage, "boom"), http.StatusInternalServerError},
		{stderrors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestWithMetadataCarriesContext(t *testing.T) {
	err := WithMetadata(CodeCSVInvalidRow, "bad cost", map[string]string{"line": "7"})
	if err.Metadata["line"] != "7" {
		t.Fatalf("metadata line = %q, want 7", err.Metadata["line"])
	}
}
