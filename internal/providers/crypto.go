package providers

import "context"

// CryptoFeed is the placeholder for crypto charts. No upstream is wired yet.
type CryptoFeed struct{}

func NewCryptoFeed() *CryptoFeed { return &CryptoFeed{} }

func (c *CryptoFeed) Name() string { return NameCrypto }

func (c *CryptoFeed) Invoke(_ context.Context, query string) ([]string, error) {
	return nil, newError(NameCrypto, query, ErrNotImplemented, nil)
}
