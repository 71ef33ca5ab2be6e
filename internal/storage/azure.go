package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/sirupsen/logrus"
)

// azureOpTimeout bounds a single blob call. Renders are a few MB at most.
const azureOpTimeout = 2 * time.Minute

// AzureStorage keeps the engine state blob and archived renders in one
// Azure Blob Storage container
type AzureStorage struct {
	client    *azblob.Client
	container string
}

var _ StorageInterface = (*AzureStorage)(nil)

// NewAzureStorage connects with the default credential chain (managed
// identity in Azure, CLI login locally) and creates the container if needed.
func NewAzureStorage(accountName, container string) (*AzureStorage, error) {
	if accountName == "" {
		return nil, fmt.Errorf("azure storage account name is required")
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	client, err := azblob.NewClient(fmt.Sprintf("https://%s.blob.core.windows.net/", accountName), credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure blob client: %w", err)
	}

	s := &AzureStorage{client: client, container: container}

	ctx, cancel := context.WithTimeout(context.Background(), azureOpTimeout)
	defer cancel()
	if _, err := s.client.CreateContainer(ctx, container, nil); err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("failed to create container %s: %w", container, err)
	}

	logrus.Infof("Using Azure container %s/%s", accountName, container)
	return s, nil
}

// Store uploads name with a content type derived from its extension
func (s *AzureStorage) Store(name string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), azureOpTimeout)
	defer cancel()

	contentType := ContentTypeFor(name)
	_, err := s.client.UploadBuffer(ctx, s.container, name, data, &azblob.UploadBufferOptions{
		BlockSize:   4 << 20,
		Concurrency: 3,
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to azure: %w", name, err)
	}

	logrus.Debugf("Stored %s (%d bytes, %s) in Azure", name, len(data), contentType)
	return nil
}

func (s *AzureStorage) Retrieve(name string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), azureOpTimeout)
	defer cancel()

	resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download %s from azure: %w", name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from azure: %w", name, err)
	}
	return data, nil
}

func (s *AzureStorage) List(prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), azureOpTimeout)
	defer cancel()

	var names []string
	pager := s.client.NewListBlobsFlatPager(s.container, &azblob.ListBlobsFlatOptions{Prefix: &prefix})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %q in azure: %w", prefix, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}
	return names, nil
}

// Delete removes name; a missing blob is not an error
func (s *AzureStorage) Delete(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), azureOpTimeout)
	defer cancel()

	_, err := s.client.DeleteBlob(ctx, s.container, name, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
		return fmt.Errorf("failed to delete %s from azure: %w", name, err)
	}
	return nil
}
