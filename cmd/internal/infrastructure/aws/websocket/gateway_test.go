package websocket

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	throttled := errors.New("throttled")

	assert.NoError(t, translate("c1", nil))
	assert.ErrorIs(t, translate("c1", &types.GoneException{}), ErrConnectionGone)
	assert.ErrorIs(t, translate("c1", fmt.Errorf("operation error: %w", &types.GoneException{})), ErrConnectionGone)
	assert.Equal(t, throttled, translate("c1", throttled))
}
