package env

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientID(t *testing.T) {
	id := ClientID("brdread")
	require.True(t, strings.HasPrefix(id, "brdread-"))
	require.LessOrEqual(t, len(id), len("brdread-")+12)
	require.Equal(t, id, ClientID("brdread"))
}
