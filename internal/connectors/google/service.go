package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveReadonlyScope is the only scope quire requests.
const DriveReadonlyScope = drive.DriveReadonlyScope

// NewDriveService creates a Google Drive API service using the provided
// TokenSource. Extra options are appended, e.g. an endpoint override.
func NewDriveService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*drive.Service, error) {
	opts = append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return svc, nil
}

// AccountEmail returns the email address of the authorised Drive user.
func AccountEmail(ctx context.Context, svc *drive.Service) (string, error) {
	about, err := svc.About.Get().Fields("user(emailAddress)").Context(ctx).Do()
	if err != nil {
		return "", WrapError(err, "get account")
	}
	if about.User == nil {
		return "", nil
	}
	return about.User.EmailAddress, nil
}
