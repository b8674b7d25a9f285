package client

// Client is the composition root: every use case built over one
// RemoteSource.
type Client struct {
	CurrentUser *GetCurrentUser
	Folders     *GetFolders
	FolderWords *GetFolderWords
	Word        *GetWord
}

// New builds a Client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	remote, err := NewRemoteSource(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{
		CurrentUser: NewGetCurrentUser(remote),
		Folders:     NewGetFolders(remote),
		FolderWords: NewGetFolderWords(remote, remote),
		Word:        NewGetWord(remote),
	}, nil
}
