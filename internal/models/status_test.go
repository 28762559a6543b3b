package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepPtr(s StepKind) *StepKind { return &s }

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		name string
		step *StepKind
		want bool
	}{
		{name: "no step classification", step: nil, want: false},
		{name: "signature step", step: stepPtr(StepSignature), want: false},
		{name: "accept step", step: stepPtr(StepAccept), want: true},
		{name: "refuse step", step: stepPtr(StepRefuse), want: true},
		{name: "abandon step", step: stepPtr(StepAbandon), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Status{Code: "REQSTATUS00099", Step: tt.step}
			assert.Equal(t, tt.want, s.IsTerminal())
		})
	}
}

func TestStatus_RequiresElevatedRole(t *testing.T) {
	assert.False(t, (&Status{}).RequiresElevatedRole())
	assert.True(t, (&Status{RequiresCTO: true}).RequiresElevatedRole())
	assert.True(t, (&Status{RequiresN1: true}).RequiresElevatedRole())
	assert.True(t, (&Status{RequiresN2: true}).RequiresElevatedRole())
}

func TestJSONB_Scan(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		wantErr bool
		check   func(t *testing.T, j JSONB)
	}{
		{
			name:  "nil value",
			value: nil,
			check: func(t *testing.T, j JSONB) {
				assert.NotNil(t, j)
				assert.Empty(t, j)
			},
		},
		{
			name:  "valid JSON bytes",
			value: []byte(`{"reason": "missing stamp", "attempt": 2}`),
			check: func(t *testing.T, j JSONB) {
				assert.Equal(t, "missing stamp", j["reason"])
				assert.InDelta(t, 2, j["attempt"], 0.001)
			},
		},
		{
			name:  "non-byte value",
			value: "string value",
			check: func(t *testing.T, j JSONB) {
				assert.NotNil(t, j)
				assert.Empty(t, j)
			},
		},
		{
			name:    "invalid JSON",
			value:   []byte(`{invalid json`),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var j JSONB
			err := j.Scan(tt.value)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)

			if tt.check != nil {
				tt.check(t, j)
			}
		})
	}
}

func TestDocumentSet_ScanValue(t *testing.T) {
	t.Run("nil scans to empty set", func(t *testing.T) {
		var d DocumentSet
		require.NoError(t, d.Scan(nil))
		assert.NotNil(t, d)
		assert.Empty(t, d)
	})

	t.Run("round trip preserves file order", func(t *testing.T) {
		src := DocumentSet{
			DocTypeIdentityProof: {
				{URL: "https://files.example.com/a.pdf", OriginalName: "a.pdf", MimeType: "application/pdf", Size: 100},
				{URL: "https://files.example.com/b.pdf", OriginalName: "b.pdf", MimeType: "application/pdf", Size: 200},
			},
		}
		raw, err := src.Value()
		require.NoError(t, err)

		var dst DocumentSet
		require.NoError(t, dst.Scan(raw.([]byte)))
		require.Len(t, dst[DocTypeIdentityProof], 2)
		assert.Equal(t, "a.pdf", dst[DocTypeIdentityProof][0].OriginalName)
		assert.Equal(t, "b.pdf", dst[DocTypeIdentityProof][1].OriginalName)
	})

	t.Run("rejects non-byte column", func(t *testing.T) {
		var d DocumentSet
		assert.Error(t, d.Scan(12))
	})
}
