package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		id    string
		title string
		want  UnitKind
	}{
		{"explicit submission", "submission", "x1", "", KindSubmission},
		{"explicit comment keeps parent title", "comment", "x1", "Parent", KindComment},
		{"label is case insensitive", " Submission ", "x1", "", KindSubmission},
		{"missing kind with submission id", "", "t3_abc", "", KindSubmission},
		{"missing kind with comment id", "", "t1_abc", "Parent title", KindComment},
		{"missing kind with title", "", "abc", "XYZ to the moon", KindSubmission},
		{"unknown kind with title", "post", "abc", "XYZ", KindSubmission},
		{"missing kind without title", "", "abc", "", KindComment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseKind(tt.raw, tt.id, tt.title))
		})
	}
}
