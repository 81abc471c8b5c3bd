package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	requestsigner "github.com/opensearch-project/opensearch-go/v4/signer/awsv2"

	"github.com/spacesedan/storyguard/config"
)

const OPENSEARCH_SIGNING_SERVICE = "es"

// NewOpensearchClient connects with basic auth locally and with SigV4
// signed requests in prod.
func NewOpensearchClient(ctx context.Context, env string, cfg config.OpenSearchConfig) (*opensearch.Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("[OpenSearchClient] missing OPENSEARCH_ENDPOINT")
	}

	osCfg := opensearch.Config{
		Addresses: []string{cfg.Endpoint},
	}

	if env == "prod" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("[OpenSearchClient] failed to load AWS config: %w", err)
		}
		signer, err := requestsigner.NewSignerWithService(awsCfg, OPENSEARCH_SIGNING_SERVICE)
		if err != nil {
			return nil, fmt.Errorf("[OpenSearchClient] failed to create request signer: %w", err)
		}
		osCfg.Signer = signer
	} else {
		osCfg.Username = "admin"
		osCfg.Password = cfg.Password
	}

	client, err := opensearch.NewClient(osCfg)
	if err != nil {
		return nil, fmt.Errorf("[OpenSearchClient] failed to initialize client: %w", err)
	}
	return client, nil
}

// IsOpensearchHealthy reports whether the cluster health endpoint answers.
func IsOpensearchHealthy(ctx context.Context, client *opensearch.Client) bool {
	res, err := client.Do(ctx, opensearchapi.ClusterHealthReq{}, nil)
	if err != nil {
		return false
	}
	defer res.Body.Close()

	return !res.IsError() && res.StatusCode == http.StatusOK
}
