package business

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"

	"github.com/tarimkoop/koop/internal/koop/apierrors"
	"github.com/tarimkoop/koop/internal/koop/dao"
	"github.com/tarimkoop/koop/internal/koop/notifications"
	errStack "github.com/tarimkoop/koop/internal/koop/stack-error"
)

type MemberInput struct {
	// FullName делится на имя и фамилию, если Name не задано.
	FullName   string
	Name       string
	Surname    string
	Position   string
	Department string
	Email      string
	Phone      string
	JoinDate   *time.Time
	IsActive   *bool
	Role       string
}

func (b *Business) CreateMember(in MemberInput) (*dao.Member, error) {
	m := dao.Member{ID: dao.GenUUID(), IsActive: true, Role: dao.MemberRoleMember}
	if err := b.fillMember(&m, in); err != nil {
		return nil, err
	}
	// gorm не пишет false при default:true
	if err := b.db.Select("*").Create(&m).Error; err != nil {
		return nil, errStack.TrackErrorStack(err).AddContext("table", m.TableName()).AddContext("id", m.ID)
	}
	b.notify(m.TableName(), notifications.ActionCreated, m.ID.String())
	return &m, nil
}

func (b *Business) UpdateMember(id uuid.UUID, in MemberInput) (*dao.Member, error) {
	var m dao.Member
	if err := b.db.Where("id = ?", id).First(&m).Error; err != nil {
		if dao.IsNotFound(err) {
			return nil, apierrors.ErrMemberNotFound
		}
		return nil, err
	}
	if err := b.fillMember(&m, in); err != nil {
		return nil, err
	}
	if err := b.db.Select("*").Omit("created_at").Updates(&m).Error; err != nil {
		return nil, errStack.TrackErrorStack(err).AddContext("table", m.TableName()).AddContext("id", m.ID)
	}
	b.notify(m.TableName(), notifications.ActionUpdated, m.ID.String())
	return &m, nil
}

func (b *Business) DeleteMember(id uuid.UUID) error {
	return b.deleteRecord(&dao.Member{}, id, apierrors.ErrMemberNotFound)
}

func (b *Business) fillMember(m *dao.Member, in MemberInput) error {
	name, surname := strings.TrimSpace(in.Name), strings.TrimSpace(in.Surname)
	if name == "" {
		name, surname = dao.SplitFullName(in.FullName)
	}
	if name == "" {
		return apierrors.ErrInvalidRequest.WithFormattedMessage("name")
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email != "" {
		var exist bool
		if err := b.db.Model(&dao.Member{}).
			Select("count(*) > 0").
			Where("lower(email) = ?", email).
			Where("id <> ?", m.ID).
			Find(&exist).Error; err != nil {
			return err
		}
		if exist {
			return apierrors.ErrMemberEmailConflict
		}
	}

	switch in.Role {
	case "":
	case dao.MemberRoleMember, dao.MemberRoleBoard, dao.MemberRoleAudit, dao.MemberRoleAdmin:
		m.Role = in.Role
	default:
		return apierrors.ErrInvalidRequest.WithFormattedMessage("role")
	}

	m.Name = name
	m.Surname = surname
	m.Position = strings.TrimSpace(in.Position)
	m.Department = strings.TrimSpace(in.Department)
	m.Email = email
	m.Phone = strings.TrimSpace(in.Phone)
	if in.JoinDate != nil {
		m.JoinDate = in.JoinDate
	}
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
	}
	return nil
}
