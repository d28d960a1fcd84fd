// Package repository: MuteAuditRepository interface.
//
// Mute işlemlerinin kalıcı denetim kaydı. Sadece okunur/eklenir;
// registry bu tablodan geri yüklenmez.
package repository

import (
	"context"

	"github.com/akinalp/hush/models"
)

// MuteAuditRepository, mute audit veritabanı işlemleri için interface.
type MuteAuditRepository interface {
	// Create, yeni audit kaydı ekler; ID ve CreatedAt alanlarını doldurur.
	Create(ctx context.Context, audit *models.MuteAudit) error

	// ListRecent, en yeni kayıtları yeniden eskiye doğru döner.
	ListRecent(ctx context.Context, limit int) ([]models.MuteAudit, error)
}
