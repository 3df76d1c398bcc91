package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// SSMParameter points at one Systems Manager parameter.
type SSMParameter struct {
	Session

	ParameterName string `config:"parameter_name" validate:"required"`
}

// Value fetches the parameter, decrypting SecureString values.
func (p *SSMParameter) Value(ctx context.Context) (string, error) {
	cfg, err := p.Config(ctx)
	if err != nil {
		return "", err
	}
	out, err := ssm.NewFromConfig(cfg).GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(p.ParameterName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("getting parameter %s: %w", p.ParameterName, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s has no value", p.ParameterName)
	}
	return *out.Parameter.Value, nil
}
