// Package aws provides configuration sections for AWS resources. Each
// section extends Credentials, so the secret half of an access key
// flows through the same password backends as any other credential.
package aws

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/arcann/config-wrangler/pkg/templates"
)

// Session holds region and credential settings and builds an
// aws.Config on demand, cached per section instance.
//
// When user_id is set it is taken as an access key id and the secret
// is fetched through the credential backends. Otherwise the SDK's
// default provider chain applies.
type Session struct {
	templates.Credentials

	Region  string `config:"region"`
	Profile string `config:"profile"`

	mu     sync.Mutex
	cached *aws.Config
}

// Config resolves the AWS client configuration for this section.
func (s *Session) Config(ctx context.Context) (aws.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		return *s.cached, nil
	}

	var opts []func(*awsconfig.LoadOptions) error
	if s.Region != "" {
		opts = append(opts, awsconfig.WithRegion(s.Region))
	}
	if s.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(s.Profile))
	}
	if s.UserID != "" {
		secret, err := s.GetPassword()
		if err != nil {
			return aws.Config{}, fmt.Errorf("resolving AWS secret key: %w", err)
		}
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.UserID, secret, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	s.cached = &cfg
	return cfg, nil
}
