package navidrome

import (
	"net/http"
	"sync"

	subsonic "github.com/delucks/go-subsonic"
)

const clientName = "tidaloader"

// NavidromeClient holds the navidrome client and other required fields
type NavidromeClient struct {
	URL        string
	Username   string
	Password   string
	HTTPClient *http.Client

	mu            sync.Mutex
	client        subsonic.Client
	authenticated bool
}

// NewNavidromeClient creates a new navidrome client
func NewNavidromeClient(url, username, password string) *NavidromeClient {
	return &NavidromeClient{
		URL:        url,
		Username:   username,
		Password:   password,
		HTTPClient: http.DefaultClient,
	}
}
