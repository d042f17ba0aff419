package testutil

import (
	"testing"

	"github.com/Baaaki/inkwell/internal/models"
	"github.com/Baaaki/inkwell/internal/session"
	"github.com/Baaaki/inkwell/internal/utils"
	"gorm.io/gorm"
)

// CreateTestUser inserts a user with a hashed password
func CreateTestUser(t *testing.T, db *gorm.DB, username, email, password string, role models.Role) *models.User {
	t.Helper()

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		DisplayName:  username,
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

// DefaultTestUser inserts a regular user
func DefaultTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUser(t, db, "testuser", "test@example.com", "Test123456", models.RoleUser)
}

// DefaultAdminUser inserts an admin
func DefaultAdminUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUser(t, db, "admin", "admin@example.com", "Admin123456", models.RoleAdmin)
}

// CreateTestPost inserts a post owned by user. A nil user makes a legacy,
// ownerless post.
func CreateTestPost(t *testing.T, db *gorm.DB, user *models.User, title string, status models.PostStatus) *models.Post {
	t.Helper()

	post := &models.Post{
		Title:   title,
		Content: "content of " + title,
		Author:  "anonymous",
		Status:  status,
	}
	if user != nil {
		post.UserID = &user.ID
		post.Author = user.DisplayName
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("Failed to create post %s: %v", title, err)
	}
	return post
}

// CreateTestComment inserts a comment on post written by user
func CreateTestComment(t *testing.T, db *gorm.DB, post *models.Post, user *models.User, content string) *models.Comment {
	t.Helper()

	comment := &models.Comment{
		PostID:  post.ID,
		Author:  "anonymous",
		Content: content,
	}
	if user != nil {
		comment.UserID = &user.ID
		comment.Author = user.DisplayName
	}
	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create comment: %v", err)
	}
	return comment
}

// IdentityOf is the session snapshot a logged-in user would carry
func IdentityOf(user *models.User) *session.Identity {
	identity := session.IdentityFromUser(user)
	return &identity
}
