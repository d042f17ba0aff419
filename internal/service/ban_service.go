package service

import (
	"context"
	"net"
	"strings"

	"github.com/Baaaki/inkwell/internal/apperr"
	"github.com/Baaaki/inkwell/internal/audit"
	"github.com/Baaaki/inkwell/internal/authz"
	"github.com/Baaaki/inkwell/internal/session"
	"github.com/Baaaki/inkwell/pkg/logger"
	"go.uber.org/zap"
)

// IPBanner maintains the set of addresses refused by the auth rate limiter
type IPBanner interface {
	BanIP(ctx context.Context, ip string) error
	UnbanIP(ctx context.Context, ip string) error
}

// BanService lets admins block client addresses from register and login.
type BanService struct {
	banner  IPBanner
	journal audit.Recorder
}

func NewBanService(banner IPBanner, journal audit.Recorder) *BanService {
	return &BanService{
		banner:  banner,
		journal: journal,
	}
}

// Ban blocks raw and returns it in canonical form
func (s *BanService) Ban(ctx context.Context, identity *session.Identity, raw string) (string, error) {
	ip, err := s.authorize(identity, raw)
	if err != nil {
		return "", err
	}

	if err := s.banner.BanIP(ctx, ip); err != nil {
		logger.Log.Error("Failed to ban IP", zap.String("ip", ip), zap.Error(err))
		return "", err
	}

	recordAdminAction(s.journal, audit.Entry{
		Action:  audit.ActionIPBan,
		ActorID: identity.ID,
		Detail:  ip,
	})

	logger.Log.Warn("IP banned",
		zap.String("ip", ip),
		zap.Uint("admin_id", identity.ID),
	)
	return ip, nil
}

// Unban lifts a ban. Addresses that were never banned are not an error.
func (s *BanService) Unban(ctx context.Context, identity *session.Identity, raw string) (string, error) {
	ip, err := s.authorize(identity, raw)
	if err != nil {
		return "", err
	}

	if err := s.banner.UnbanIP(ctx, ip); err != nil {
		logger.Log.Error("Failed to unban IP", zap.String("ip", ip), zap.Error(err))
		return "", err
	}

	recordAdminAction(s.journal, audit.Entry{
		Action:  audit.ActionIPUnban,
		ActorID: identity.ID,
		Detail:  ip,
	})

	logger.Log.Info("IP unbanned",
		zap.String("ip", ip),
		zap.Uint("admin_id", identity.ID),
	)
	return ip, nil
}

func (s *BanService) authorize(identity *session.Identity, raw string) (string, error) {
	if err := authz.RequireAdmin(identity).Err(); err != nil {
		return "", err
	}

	parsed := net.ParseIP(strings.TrimSpace(raw))
	if parsed == nil {
		return "", apperr.Validation("invalid IP address")
	}
	return parsed.String(), nil
}
