/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package secrets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"k8s.io/klog/v2"

	"github.com/Memo-Aldu/flow-builder/pkg/config"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

// SecretsManagerAPI is the slice of the AWS client the store needs.
type SecretsManagerAPI interface {
	GetSecretValue(context.Context, *secretsmanager.GetSecretValueInput, ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// awsStore resolves references against AWS Secrets Manager.
type awsStore struct {
	client SecretsManagerAPI
}

// NewAWSStore builds the external backend from configuration. A non-empty
// endpoint override points the client at a local emulator.
func NewAWSStore(ctx context.Context) (Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.GetSecretsRegion()),
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config, %w", err)
	}
	endpoint := config.GetSecretsEndpoint()
	client := secretsmanager.NewFromConfig(cfg, func(o *secretsmanager.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	klog.Infof("init secrets manager store, region: %s", config.GetSecretsRegion())
	return NewAWSStoreWithClient(client), nil
}

// NewAWSStoreWithClient builds the backend around an existing client.
func NewAWSStoreWithClient(client SecretsManagerAPI) Store {
	return &awsStore{client: client}
}

func (s *awsStore) Resolve(ctx context.Context, secretRef string) (string, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretRef),
	})
	if err != nil {
		return "", flowerrors.NewNotFound("Credential", secretRef).WithError(err)
	}
	if out.SecretString != nil {
		return aws.ToString(out.SecretString), nil
	}
	return string(out.SecretBinary), nil
}
