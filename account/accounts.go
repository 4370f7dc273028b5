package account

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"shipflow/bizerror"
	"shipflow/idgen"
	"shipflow/persistence"
	"shipflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

const (
	SystemAdminPermission     = "system:admin"
	WorkflowOperatePermission = "workflow:operate"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryUsersFunc = QueryUsers
	CreateUserFunc = CreateUser
)

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// DefaultSecurityConfiguration creates the bootstrap admin account when the
// users table is empty.
func DefaultSecurityConfiguration() error {
	db := persistence.ActiveDataSourceManager.GormDB()
	return db.Transaction(func(tx *gorm.DB) error {
		admin := User{}
		err := tx.Model(&User{}).Where(&User{ID: 1}).First(&admin).Error
		if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
			initialAdminPassword := os.Getenv("INITIAL_ADMIN_PASSWORD")
			if initialAdminPassword == "" {
				initialAdminPassword = "admin123"
			}
			if err := tx.Save(&User{ID: 1, Name: "admin", Secret: HashSha256(initialAdminPassword), Admin: true}).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		return nil
	})
}

// PermsOfUser maps the account to the permission set carried by its
// sessions.
func PermsOfUser(u *User) []string {
	perms := []string{WorkflowOperatePermission}
	if u.Admin {
		perms = append(perms, SystemAdminPermission)
	}
	return perms
}

func QueryUsers(sec *session.Context) (*[]UserInfo, error) {
	var users []UserInfo
	if err := persistence.ActiveDataSourceManager.GormDB().Model(&User{}).Scan(&users).Error; err != nil {
		return nil, err
	}
	return &users, nil
}

func CreateUser(c *UserCreation, sec *session.Context) (*UserInfo, error) {
	if !sec.Perms.HasRole(SystemAdminPermission) {
		return nil, bizerror.ErrForbidden
	}

	user := User{ID: idgen.NextID(userIdWorker), Name: c.Name, Nickname: c.Nickname, Secret: HashSha256(c.Secret), Admin: c.Admin}
	if err := persistence.ActiveDataSourceManager.GormDB().Save(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname, Admin: user.Admin}, nil
}

func UpdateBasicAuthSecret(u *BasicAuthUpdating, sec *session.Context) error {
	db := persistence.ActiveDataSourceManager.GormDB()
	user := User{}
	if err := db.Model(&User{}).Where(&User{ID: sec.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).Scan(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bizerror.ErrInvalidPassword
		}
		return err
	}

	return db.Model(&User{}).Where(&User{ID: sec.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).
		Update(&User{Secret: HashSha256(u.NewSecret)}).Error
}

func QueryAccountNames(ids []types.ID) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB()
	var records []UserInfo
	if err := db.Model(&User{}).Where("id IN (?)", ids).Scan(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.DisplayName()
	}
	return result, nil
}
