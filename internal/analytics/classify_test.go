package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		hasReturn bool
		want      Classification
	}{
		{"cancelled", "Cancelled", false, ClassCancelled},
		{"cancelled wins over return record", "Cancelled", true, ClassCancelled},
		{"cancelled case-insensitive", "cancelled", false, ClassCancelled},
		{"return record overrides delivered", "Delivered", true, ClassReturned},
		{"returned literal", "Returned", false, ClassReturned},
		{"completed", "Completed", false, ClassCompleted},
		{"delivered", "Delivered", false, ClassCompleted},
		{"complete", "Complete", false, ClassCompleted},
		{"delivered case-insensitive", "DELIVERED", false, ClassCompleted},
		{"pending", "Pending", false, ClassActive},
		{"processing", "Processing", false, ClassActive},
		{"shipped", "Shipped", false, ClassActive},
		{"unrecognized literal", "Awaiting Carrier", false, ClassActive},
		{"empty", "", false, ClassActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.status, tt.hasReturn))
		})
	}
}

func TestClassificationString(t *testing.T) {
	require.Equal(t, "Completed", ClassCompleted.String())
	require.Equal(t, "Returned", ClassReturned.String())
	require.Equal(t, "Cancelled", ClassCancelled.String())
	require.Equal(t, "Active", ClassActive.String())
}
