package inference

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// bedrockAPI is the subset of the Bedrock runtime client used here.
type bedrockAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockConfig holds AWS Bedrock runtime settings.
type BedrockConfig struct {
	Region  string `yaml:"region"`
	Profile string `yaml:"profile"`
	ModelID string `yaml:"model_id"`
}

// BedrockInvoker implements Invoker against the AWS Bedrock runtime.
type BedrockInvoker struct {
	client  bedrockAPI
	modelID string
}

// NewBedrockInvoker loads the default AWS credential chain for cfg.Region and creates a runtime client.
func NewBedrockInvoker(ctx context.Context, cfg BedrockConfig) (*BedrockInvoker, error) {
	if cfg.ModelID == "" {
		return nil, fmt.Errorf("bedrock model id is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &BedrockInvoker{
		client:  bedrockruntime.NewFromConfig(awsCfg),
		modelID: cfg.ModelID,
	}, nil
}

func (b *BedrockInvoker) InvokeModel(ctx context.Context, req *InvokeRequest) ([]byte, error) {
	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelFor(req, b.modelID)),
		Body:        req.Body,
		ContentType: aws.String(req.ContentType),
		Accept:      aws.String(req.Accept),
	})
	if err != nil {
		return nil, mapBedrockError(err)
	}
	return out.Body, nil
}

func (b *BedrockInvoker) ModelID() string {
	return b.modelID
}

func mapBedrockError(err error) error {
	var throttled *types.ThrottlingException
	if errors.As(err, &throttled) {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}
