package telemetry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func TestStartServiceSpan(t *testing.T) {
	_, sr := recordDBSpans(t)

	ctx, span := StartServiceSpan(context.Background(), "inventory", "restock")
	require.NotNil(t, span)
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "inventory.restock", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
}

func TestStartSpan_WithAttributes(t *testing.T) {
	_, sr := recordDBSpans(t)

	branchID := uuid.NewString()
	_, span := StartSpan(context.Background(), "order.deduct_for_order",
		attribute.String(SpanAttrBranchID, branchID))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	val, ok := findAttr(spans[0].Attributes(), attribute.Key(SpanAttrBranchID))
	require.True(t, ok)
	assert.Equal(t, branchID, val.AsString())
}

func TestSetAttributes(t *testing.T) {
	_, sr := recordDBSpans(t)

	orderID := uuid.New()
	_, span := StartServiceSpan(context.Background(), "order", "record_sale")
	SetAttributes(span,
		SpanAttrOrderID, orderID,
		SpanAttrQuantity, 2.5,
		"line_count", 3,
		42, "dropped non-string key",
		"dangling",
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	attrs := spans[0].Attributes()

	val, ok := findAttr(attrs, attribute.Key(SpanAttrOrderID))
	require.True(t, ok)
	assert.Equal(t, orderID.String(), val.AsString())

	val, ok = findAttr(attrs, attribute.Key(SpanAttrQuantity))
	require.True(t, ok)
	assert.Equal(t, 2.5, val.AsFloat64())

	val, ok = findAttr(attrs, attribute.Key("line_count"))
	require.True(t, ok)
	assert.Equal(t, int64(3), val.AsInt64())

	_, ok = findAttr(attrs, attribute.Key("dangling"))
	assert.False(t, ok)
}

func TestSetAttributes_NilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		SetAttributes(nil, SpanAttrBranchID, uuid.NewString())
	})
}

func TestSetAttribute_Types(t *testing.T) {
	_, sr := recordDBSpans(t)

	ingredientID := uuid.New()
	_, span := StartServiceSpan(context.Background(), "inventory", "adjust")
	SetAttribute(span, SpanAttrIngredientID, ingredientID)
	SetAttribute(span, "reason", "spoilage")
	SetAttribute(span, "delta", int64(-4))
	SetAttribute(span, "tracked", true)
	SetAttribute(span, "threshold", struct{ N int }{N: 10})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	attrs := spans[0].Attributes()

	val, ok := findAttr(attrs, attribute.Key(SpanAttrIngredientID))
	require.True(t, ok)
	assert.Equal(t, ingredientID.String(), val.AsString())

	val, ok = findAttr(attrs, attribute.Key("reason"))
	require.True(t, ok)
	assert.Equal(t, "spoilage", val.AsString())

	val, ok = findAttr(attrs, attribute.Key("delta"))
	require.True(t, ok)
	assert.Equal(t, int64(-4), val.AsInt64())

	val, ok = findAttr(attrs, attribute.Key("tracked"))
	require.True(t, ok)
	assert.True(t, val.AsBool())

	val, ok = findAttr(attrs, attribute.Key("threshold"))
	require.True(t, ok)
	assert.Equal(t, "{10}", val.AsString())
}

func TestRecordError(t *testing.T) {
	_, sr := recordDBSpans(t)

	_, span := StartServiceSpan(context.Background(), "inventory", "restock")
	RecordError(span, assert.AnError)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	snapshot := spans[0]
	assert.Equal(t, codes.Error, snapshot.Status().Code)
	assert.Equal(t, assert.AnError.Error(), snapshot.Status().Description)

	require.NotEmpty(t, snapshot.Events())
	assert.Equal(t, "exception", snapshot.Events()[0].Name)
}

func TestRecordError_NilInputs(t *testing.T) {
	_, sr := recordDBSpans(t)

	assert.NotPanics(t, func() {
		RecordError(nil, assert.AnError)
	})

	_, span := StartServiceSpan(context.Background(), "inventory", "restock")
	RecordError(span, nil)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Empty(t, spans[0].Events())
}
