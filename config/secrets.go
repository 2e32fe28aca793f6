package config

import (
	"context"
	"fmt"
	"os"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// LoadSecrets replaces the token with the one stored in Google Secret Manager
// when running on GCP (GOOGLE_CLOUD_PROJECT and TOKEN_SECRET_NAME set).
func LoadSecrets(ctx context.Context) error {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	secretName := os.Getenv("TOKEN_SECRET_NAME")
	if projectID == "" || secretName == "" {
		return nil
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, secretName),
	})
	if err != nil {
		return fmt.Errorf("accessing secret %q: %w", secretName, err)
	}

	Token = string(result.GetPayload().GetData())

	return nil
}
