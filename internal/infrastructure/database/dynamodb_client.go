package database

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoDBSettings selects the DynamoDB account and endpoint.
//
// With an Endpoint set (DynamoDB Local, LocalStack) static credentials are
// always used, defaulting to "local"; DynamoDB Local does not validate them
// but the SDK requires some. Without an Endpoint, static credentials are used
// only when both keys are given, otherwise the default AWS chain applies.
type DynamoDBSettings struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// NewDynamoDBClient builds the client shared by every repository and the notifier.
func NewDynamoDBClient(ctx context.Context, s DynamoDBSettings) (*dynamodb.Client, error) {
	cfg, err := loadAWSConfig(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamodb config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
		}
	}), nil
}

func loadAWSConfig(ctx context.Context, s DynamoDBSettings) (aws.Config, error) {
	region := s.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}

	accessKey, secretKey := s.AccessKeyID, s.SecretAccessKey
	if s.Endpoint != "" {
		if accessKey == "" {
			accessKey = "local"
		}
		if secretKey == "" {
			secretKey = "local"
		}
	}
	if accessKey != "" && secretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	return config.LoadDefaultConfig(ctx, loadOpts...)
}
