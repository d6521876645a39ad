package ec2

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// RealClient implements Provisioner against the EC2 API.
type RealClient struct {
	ec2 *ec2.Client
}

// NewRealClient creates a client using the default AWS credential chain
// (environment, shared config, instance role).
func NewRealClient(ctx context.Context, region string) (*RealClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &RealClient{ec2: ec2.NewFromConfig(cfg)}, nil
}

// NewRealClientWithStaticCredentials creates a client from an explicit
// key pair. Used by automation that runs outside an AWS credential chain.
func NewRealClientWithStaticCredentials(ctx context.Context, region, accessKey, secretKey string) (*RealClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &RealClient{ec2: ec2.NewFromConfig(cfg)}, nil
}

var _ Provisioner = (*RealClient)(nil)

// RunInstance launches a single instance per opts.
func (c *RealClient) RunInstance(ctx context.Context, opts InstanceCreateOpts) (string, error) {
	input := &ec2.RunInstancesInput{
		ImageId:      aws.String(opts.ImageID),
		InstanceType: types.InstanceType(opts.InstanceType),
		MinCount:     aws.Int32(1),
		MaxCount:     aws.Int32(1),
	}
	if opts.KeyName != "" {
		input.KeyName = aws.String(opts.KeyName)
	}
	if len(opts.SecurityGroupIDs) > 0 {
		input.SecurityGroupIds = opts.SecurityGroupIDs
	}
	if opts.SubnetID != "" {
		input.SubnetId = aws.String(opts.SubnetID)
	}
	if opts.InstanceProfile != "" {
		input.IamInstanceProfile = &types.IamInstanceProfileSpecification{
			Name: aws.String(opts.InstanceProfile),
		}
	}
	if opts.UserData != "" {
		input.UserData = aws.String(base64.StdEncoding.EncodeToString([]byte(opts.UserData)))
	}

	out, err := c.ec2.RunInstances(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to launch instance from image %s: %w", opts.ImageID, err)
	}
	if len(out.Instances) == 0 || out.Instances[0].InstanceId == nil {
		return "", fmt.Errorf("launch from image %s: %w", opts.ImageID, ErrNoInstanceID)
	}

	return aws.ToString(out.Instances[0].InstanceId), nil
}

// TagInstance applies a single tag to the instance.
func (c *RealClient) TagInstance(ctx context.Context, instanceID, key, value string) error {
	_, err := c.ec2.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{instanceID},
		Tags: []types.Tag{
			{Key: aws.String(key), Value: aws.String(value)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to tag instance %s: %w", instanceID, err)
	}
	return nil
}

// DescribeAddress returns the public IPv4 address of the instance, or ""
// while the provider has not assigned one.
func (c *RealClient) DescribeAddress(ctx context.Context, instanceID string) (string, error) {
	out, err := c.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe instance %s: %w", instanceID, err)
	}

	for _, reservation := range out.Reservations {
		for _, instance := range reservation.Instances {
			if instance.PublicIpAddress != nil {
				return aws.ToString(instance.PublicIpAddress), nil
			}
		}
	}
	return "", nil
}
