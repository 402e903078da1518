package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shelfwatch/shelfwatch/pkg/model"
)

func TestItem_DisplayName(t *testing.T) {
	named := model.Item{ID: "sku-001", Name: "Widget"}
	assert.Equal(t, "Widget", named.DisplayName())

	unnamed := model.Item{ID: "sku-002"}
	assert.Equal(t, "sku-002", unnamed.DisplayName())
}

func TestCheckResult_Values(t *testing.T) {
	assert.Equal(t, "NONE", string(model.ResultNone))
	assert.Equal(t, "SKIPPED", string(model.ResultSkipped))
	assert.Equal(t, "SENT", string(model.ResultSent))
}
