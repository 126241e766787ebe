package tracing

import (
	"context"
	"testing"
)

// TestStartSpan_NoProvider 测试未初始化Provider时StartSpan可用（no-op）
func TestStartSpan_NoProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "bookdiscovery", "ListBooks")
	defer span.End()

	if ctx == nil {
		t.Fatal("StartSpan返回的ctx不应为nil")
	}
}

// TestExtractTraceID_Empty 测试无Span的Context返回空TraceID
func TestExtractTraceID_Empty(t *testing.T) {
	if id := ExtractTraceID(context.Background()); id != "" {
		t.Errorf("期望空TraceID，实际%q", id)
	}
	if id := ExtractSpanID(context.Background()); id != "" {
		t.Errorf("期望空SpanID，实际%q", id)
	}
}
