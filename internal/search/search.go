package search

import (
	"net/http"
	"os"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
)

// Connect builds the OpenSearch client. It does not probe the cluster,
// startup liveness is handled by the store's WaitForCluster.
func Connect() (*opensearch.Client, error) {
	url := os.Getenv("OPENSEARCH_URL")
	if url == "" {
		url = "http://localhost:9200"
	}

	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{url},
		Transport: &http.Transport{
			ResponseHeaderTimeout: 30 * time.Second,
		},
	})
	if err != nil {
		return nil, err
	}

	return client, nil
}
