/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package rewrite

import (
	"testing"

	"github.com/fulmenhq/catmigrate/pkg/category"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifier_Classify(t *testing.T) {
	c, err := NewClassifier(category.Default(), DefaultPriority)
	require.NoError(t, err)

	tests := []struct {
		name   string
		text   string
		want   category.Kind
		wantOK bool
	}{
		{name: "consumable literal", text: `"category": "consumable"`, want: category.Consumable, wantOK: true},
		{name: "consumable symbol", text: `"category": CATEGORY.CONSUMABLE`, want: category.Consumable, wantOK: true},
		{name: "resource literal", text: `"category": "resource"`, want: category.Resource, wantOK: true},
		{name: "resource symbol", text: `"category": CATEGORY.RESOURCE`, want: category.Resource, wantOK: true},
		{
			name:   "both tags resolve to consumable",
			text:   "\"category\": \"resource\"\n\"category\": \"consumable\"",
			want:   category.Consumable,
			wantOK: true,
		},
		{name: "equipment is not a candidate", text: `"category": "equipment"`},
		{name: "neither", text: "export const Amber = {}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Classify(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewClassifier_Validation(t *testing.T) {
	_, err := NewClassifier(category.Default(), nil)
	assert.Error(t, err)

	_, err = NewClassifier(category.Default(), []category.Kind{"quest"})
	assert.Error(t, err)

	c, err := NewClassifier(category.Default(), []category.Kind{category.Resource, category.Consumable})
	require.NoError(t, err)
	assert.Equal(t, []category.Kind{category.Resource, category.Consumable}, c.Priority())

	kind, ok := c.Classify("\"category\": \"resource\"\n\"category\": \"consumable\"")
	assert.True(t, ok)
	assert.Equal(t, category.Resource, kind)
}
