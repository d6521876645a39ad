package ec2

import "context"

// MockClient is a mock implementation of Provisioner. Zero-value methods
// return canned successes; set the corresponding Func field to override.
type MockClient struct {
	RunInstanceFunc     func(ctx context.Context, opts InstanceCreateOpts) (string, error)
	TagInstanceFunc     func(ctx context.Context, instanceID, key, value string) error
	DescribeAddressFunc func(ctx context.Context, instanceID string) (string, error)
}

// Ensure interface compliance
var _ Provisioner = (*MockClient)(nil)

// RunInstance mocks instance launch.
func (m *MockClient) RunInstance(ctx context.Context, opts InstanceCreateOpts) (string, error) {
	if m.RunInstanceFunc != nil {
		return m.RunInstanceFunc(ctx, opts)
	}
	return "i-mock", nil
}

// TagInstance mocks tagging.
func (m *MockClient) TagInstance(ctx context.Context, instanceID, key, value string) error {
	if m.TagInstanceFunc != nil {
		return m.TagInstanceFunc(ctx, instanceID, key, value)
	}
	return nil
}

// DescribeAddress mocks the address lookup.
func (m *MockClient) DescribeAddress(ctx context.Context, instanceID string) (string, error) {
	if m.DescribeAddressFunc != nil {
		return m.DescribeAddressFunc(ctx, instanceID)
	}
	return "192.0.2.1", nil
}
