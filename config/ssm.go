package config

import (
	"context"
	"fmt"
	"maps"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// ParameterStore fetches every parameter under a path prefix.
type ParameterStore interface {
	ParametersByPath(ctx context.Context, prefix string) (map[string]string, error)
}

// SSMStore reads parameters from AWS Systems Manager Parameter Store.
type SSMStore struct {
	client ssm.GetParametersByPathAPIClient
}

// NewSSMStore uses the default AWS credential chain.
func NewSSMStore(ctx context.Context) (*SSMStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &SSMStore{client: ssm.NewFromConfig(awsCfg)}, nil
}

// ParametersByPath keys each decrypted value by the last segment of its
// name, so /oneword/prod/LLM_API_KEY becomes LLM_API_KEY.
func (s *SSMStore) ParametersByPath(ctx context.Context, prefix string) (map[string]string, error) {
	params := make(map[string]string)
	paginator := ssm.NewGetParametersByPathPaginator(s.client, &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading SSM parameters under %s: %w", prefix, err)
		}
		for _, p := range page.Parameters {
			params[path.Base(aws.ToString(p.Name))] = aws.ToString(p.Value)
		}
	}
	return params, nil
}

// Overlay returns env with parameters from store filled in for keys the
// environment does not already set.
func Overlay(ctx context.Context, store ParameterStore, prefix string, env map[string]string) (map[string]string, error) {
	params, err := store.ParametersByPath(ctx, prefix)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]string, len(env)+len(params))
	maps.Copy(merged, params)
	for k, v := range env {
		if v != "" {
			merged[k] = v
		} else if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	log.Info().Str("path", prefix).Int("parameters", len(params)).Msg("Loaded configuration from SSM")
	return merged, nil
}
