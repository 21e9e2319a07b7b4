package api

import (
	"context"

	"github.com/starford/pinfall/internal/share"
)

// ShareService is the share-link behaviour the handlers depend on.
type ShareService interface {
	Create(ctx context.Context, req share.CreateRequest) (*share.CreateResponse, error)
	Redeem(ctx context.Context, req share.RedeemRequest) (*share.Redirect, error)
	Revoke(ctx context.Context, token string) error
	Stats(ctx context.Context, token string) (share.ClickStats, error)
}

var _ ShareService = (*share.Service)(nil)

// CreateShareRequest is the request body for creating a share link.
type CreateShareRequest struct {
	URL         string `json:"url" example:"https://events.gobwlng.uk/events/open/2025/" validate:"required"`
	Campaign    string `json:"campaign,omitempty" example:"spring-open"`
	ContentID   string `json:"contentId,omitempty" example:"open-2025"`
	ChannelHint string `json:"channelHint,omitempty" example:"share_sheet"`
}

// CreateShareResponse is returned after a link is created.
type CreateShareResponse struct {
	Token    string `json:"token" example:"3f9a1c0b7e" validate:"required"`
	ShareURL string `json:"shareUrl" example:"https://events.gobwlng.uk/s/3f9a1c0b7e" validate:"required"`
}

// ShareStatsResponse reports the recorded clicks of a link.
type ShareStatsResponse struct {
	Token  string `json:"token" example:"3f9a1c0b7e" validate:"required"`
	Total  int    `json:"total" example:"12" validate:"required"`
	Unique int    `json:"unique" example:"9" validate:"required"`
}
