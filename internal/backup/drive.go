package backup

import (
	"bytes"
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	RootBackupsFolderName = "gymlog-backup"
	folderMimeType        = "application/vnd.google-apps.folder"
)

// DriveUploader puts backup files into the gymlog-backup folder of a Google Drive.
type DriveUploader struct {
	service         *drive.Service
	backupsFolderId string
}

// NewDriveUploader looks up the backups folder and creates it when missing.
func NewDriveUploader(ctx context.Context, opts ...option.ClientOption) (*DriveUploader, error) {
	// https://github.com/googleapis/google-api-go-client/blob/master/drive/v3/drive-gen.go
	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve drive client: %w", err)
	}

	rootFolderQuery := fmt.Sprintf("mimeType = '%s' and trashed = false and name = '%s'", folderMimeType, RootBackupsFolderName)
	folders, err := driveService.
		Files.List().
		Q(rootFolderQuery).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve files: %w", err)
	}

	u := &DriveUploader{
		service: driveService,
	}

	switch len(folders.Files) {
	case 0:
		log.Println("root backups folder not found, creating ...")
		if u.backupsFolderId, err = u.createRootBackupsFolder(ctx); err != nil {
			return nil, fmt.Errorf("failed to create root backups folder: %w", err)
		}
		log.Printf("new root backups folder created: %s", u.backupsFolderId)
	case 1:
		u.backupsFolderId = folders.Files[0].Id
		log.Debugf("found backups folder ID: %s", u.backupsFolderId)
	default:
		u.backupsFolderId = folders.Files[0].Id
		log.Warnf("found %d root backups folders, will take the first one: %s", len(folders.Files), u.backupsFolderId)
	}

	return u, nil
}

func (u *DriveUploader) FolderID() string {
	return u.backupsFolderId
}

func (u *DriveUploader) createRootBackupsFolder(ctx context.Context) (string, error) {
	folderMeta := &drive.File{
		Name:     RootBackupsFolderName,
		MimeType: folderMimeType,
	}

	folder, err := u.service.
		Files.Create(folderMeta).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}

	return folder.Id, nil
}

func (u *DriveUploader) Upload(ctx context.Context, name string, content []byte) (string, error) {
	fileMeta := &drive.File{
		Name:     name,
		MimeType: "application/json",
		Parents:  []string{u.backupsFolderId},
	}

	file, err := u.service.
		Files.Create(fileMeta).
		Fields("id, parents").
		Media(bytes.NewReader(content)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}

	return file.Id, nil
}
