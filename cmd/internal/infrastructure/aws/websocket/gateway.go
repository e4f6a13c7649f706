// Package websocket pushes live comment events to API Gateway websocket
// connections. API Gateway owns the sockets; this side only knows connection ids.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"github.com/labstack/gommon/log"
)

// HeaderConnectionID is set by the API Gateway integration on $connect,
// $disconnect and message routes.
const HeaderConnectionID = "X-Connection-Id"

// ErrConnectionGone means the reader left without a $disconnect reaching us.
// Its subscription can be dropped.
var ErrConnectionGone = errors.New("websocket connection is gone")

// GatewayClient delivers JSON messages to the readers of a news item.
type GatewayClient interface {
	PostToConnection(ctx context.Context, connID string, data any) error
	DeleteConnection(ctx context.Context, connID string) error
}

type AWSGatewayClient struct {
	client *apigatewaymanagementapi.Client
}

// NewAWSGatewayClient targets the management endpoint of the websocket stage,
// e.g. https://{api-id}.execute-api.{region}.amazonaws.com/{stage}.
func NewAWSGatewayClient(ctx context.Context, endpoint, region string) (*AWSGatewayClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return &AWSGatewayClient{client: client}, nil
}

// PostToConnection sends one comment event (or ack) as a JSON text frame.
func (g *AWSGatewayClient) PostToConnection(ctx context.Context, connID string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode socket message: %w", err)
	}

	_, err = g.client.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connID),
		Data:         payload,
	})
	return translate(connID, err)
}

// DeleteConnection closes the socket on the gateway side. Already closed
// connections are not an error.
func (g *AWSGatewayClient) DeleteConnection(ctx context.Context, connID string) error {
	_, err := g.client.DeleteConnection(ctx, &apigatewaymanagementapi.DeleteConnectionInput{
		ConnectionId: aws.String(connID),
	})

	if err = translate(connID, err); errors.Is(err, ErrConnectionGone) {
		return nil
	}
	return err
}

func translate(connID string, err error) error {
	if err == nil {
		return nil
	}

	var gone *types.GoneException
	if errors.As(err, &gone) {
		return fmt.Errorf("%w: %s", ErrConnectionGone, connID)
	}

	log.Warnf("gateway call for connection %s failed: %v", connID, err)
	return err
}
