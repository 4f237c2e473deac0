package payments

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	require.Equal(t, "PV-00000001", FormatNumber(Egress, 1))
	require.Equal(t, "RV-00000042", FormatNumber(Ingress, 42))
	require.Equal(t, "PV-12345678", FormatNumber(Egress, 12345678))
}

func TestNumberPrefixByDirection(t *testing.T) {
	require.Equal(t, "PV", Egress.NumberPrefix())
	require.Equal(t, "RV", Ingress.NumberPrefix())
}
