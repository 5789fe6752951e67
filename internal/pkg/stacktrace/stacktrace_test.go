package stacktrace

import (
	"slices"
	"testing"
)

func TestInternalPaths(t *testing.T) {
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/clearshot/internal/auth/usecase.(*Usecase).SendOTP(...)
	/app/internal/auth/usecase/otp_send.go:57 +0x1a4
net/http.HandlerFunc.ServeHTTP(...)
	/usr/local/go/src/net/http/server.go:2294 +0x29
`)

	got := InternalPaths(stack)
	want := []string{"internal/auth/usecase/otp_send.go:57"}

	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
