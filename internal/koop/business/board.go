package business

import (
	"strings"

	"github.com/gofrs/uuid"

	"github.com/tarimkoop/koop/internal/koop/apierrors"
	"github.com/tarimkoop/koop/internal/koop/dao"
	"github.com/tarimkoop/koop/internal/koop/notifications"
	errStack "github.com/tarimkoop/koop/internal/koop/stack-error"
)

type BoardMemberInput struct {
	FullName string
	Position string
	Role     string
	Order    int
	Bio      string
	BioState string
	PhotoId  uuid.NullUUID
}

func (b *Business) CreateBoardMember(in BoardMemberInput) (*dao.BoardMember, error) {
	bm := dao.BoardMember{ID: dao.GenUUID()}
	if err := fillBoardMember(&bm, in); err != nil {
		return nil, err
	}
	if err := b.db.Create(&bm).Error; err != nil {
		return nil, errStack.TrackErrorStack(err).AddContext("table", bm.TableName()).AddContext("id", bm.ID)
	}
	b.notify(bm.TableName(), notifications.ActionCreated, bm.ID.String())
	return &bm, nil
}

func (b *Business) UpdateBoardMember(id uuid.UUID, in BoardMemberInput) (*dao.BoardMember, error) {
	var bm dao.BoardMember
	if err := b.db.Where("id = ?", id).First(&bm).Error; err != nil {
		if dao.IsNotFound(err) {
			return nil, apierrors.ErrBoardMemberNotFound
		}
		return nil, err
	}
	if err := fillBoardMember(&bm, in); err != nil {
		return nil, err
	}
	if err := b.db.Select("*").Omit("created_at").Updates(&bm).Error; err != nil {
		return nil, errStack.TrackErrorStack(err).AddContext("table", bm.TableName()).AddContext("id", bm.ID)
	}
	b.notify(bm.TableName(), notifications.ActionUpdated, bm.ID.String())
	return &bm, nil
}

func (b *Business) DeleteBoardMember(id uuid.UUID) error {
	return b.deleteRecord(&dao.BoardMember{}, id, apierrors.ErrBoardMemberNotFound)
}

func fillBoardMember(bm *dao.BoardMember, in BoardMemberInput) error {
	fullName := strings.Join(strings.Fields(in.FullName), " ")
	if fullName == "" {
		return apierrors.ErrInvalidRequest.WithFormattedMessage("full_name")
	}
	if !dao.ValidBoardRole(in.Role) {
		return apierrors.ErrInvalidBoardRole
	}

	// биография необязательна
	rc, err := NormalizeRichText(in.Bio, in.BioState)
	if err != nil {
		return err
	}

	bm.FullName = fullName
	bm.Position = strings.TrimSpace(in.Position)
	bm.Role = in.Role
	bm.Order = in.Order
	bm.Bio, bm.BioState = rc.Stored()
	bm.PhotoId = in.PhotoId
	return nil
}
