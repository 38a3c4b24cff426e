package production

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatCode(t *testing.T) {
	require.Equal(t, "OP-001", FormatCode(1))
	require.Equal(t, "OP-028", FormatCode(28))
	require.Equal(t, "OP-999", FormatCode(999))
	require.Equal(t, "OP-1000", FormatCode(1000))
}
