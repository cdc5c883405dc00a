package uploads

import (
	"github.com/OpenSAMS/sams/internal/household/model"
)

// Document is the persisted metadata of one uploaded supporting document
// (national ID scans, proof of residence, grievance attachments). The
// binary itself lives behind the StorageDriver under Key.
type Document struct {
	model.BaseModel
	Name       string `gorm:"type:varchar(255);column:name;not null" json:"name"`
	Key        string `gorm:"type:varchar(100);column:key;not null;uniqueIndex" json:"key"`
	URL        string `gorm:"type:text;column:url" json:"url"`
	Size       int64  `gorm:"column:size;not null" json:"size"`
	MimeType   string `gorm:"type:varchar(100);column:mime_type;not null" json:"mimeType"`
	UploaderID string `gorm:"type:varchar(100);column:uploader_id" json:"uploaderId"`
}

func (d *Document) TableName() string {
	return "documents"
}
