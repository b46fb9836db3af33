// api/dao/user_dao.go
package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/supplysight/sentinel/audit"
	sentinel_errors "github.com/supplysight/sentinel/errors"
	logger "github.com/supplysight/sentinel/logging"
	"github.com/supplysight/sentinel/model"
	helper_util "github.com/supplysight/sentinel/util/helper"
)

type UserDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewUserDAO(driver neo4j.Driver, auditService audit.Service) *UserDAO {
	dao := &UserDAO{Driver: driver, AuditService: auditService}
	// Ensure unique constraint on User ID
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for User", zap.Error(err))
	}
	return dao
}

func (dao *UserDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_user_id IF NOT EXISTS
        FOR (u:User) REQUIRE u.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on User ID", zap.Error(err))
		return err
	}

	return nil
}

func (dao *UserDAO) CreateUser(ctx context.Context, user model.User) (string, error) {
	start := time.Now()
	logger.Info("Creating new user", zap.String("username", user.Username))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (u:User {id: $id})
        ON CREATE SET u += $props
        ON MATCH SET u += $props
        RETURN u.id as id
        `

		attributesJSON, _ := json.Marshal(user.Attributes)

		params := map[string]interface{}{
			"id": user.ID,
			"props": map[string]interface{}{
				"name":         user.Name,
				"username":     user.Username,
				"email":        user.Email,
				"personaID":    user.PersonaID,
				"role":         user.Role,
				"departmentID": user.DepartmentID,
				"attributes":   string(attributesJSON),
				"createdAt":    time.Now().Format(time.RFC3339),
				"updatedAt":    time.Now().Format(time.RFC3339),
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, sentinel_errors.ErrDatabaseOperation
		}

		if result.Next() {
			return result.Record().Values[0], nil
		}

		return nil, sentinel_errors.ErrInternalServer
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create user",
			zap.Error(err),
			zap.String("username", user.Username),
			zap.Duration("duration", duration))
		return "", err
	}

	userID := fmt.Sprintf("%v", result)
	logger.Info("User created successfully",
		zap.String("userID", userID),
		zap.Duration("duration", duration))

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUserID(ctx),
		Action:        "CREATE_USER",
		Resource:      "users." + userID,
		AccessGranted: true,
		ChangeDetails: createUserChangeDetails(nil, &user),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return userID, nil
}

func (dao *UserDAO) UpdateUser(ctx context.Context, user model.User) (*model.User, error) {
	start := time.Now()
	logger.Info("Updating user", zap.String("userID", user.ID))

	oldUser, err := dao.GetUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err = session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:User {id: $id})
        SET u += $props
        RETURN u.id as id
        `

		attributesJSON, _ := json.Marshal(user.Attributes)

		params := map[string]interface{}{
			"id": user.ID,
			"props": map[string]interface{}{
				"name":         user.Name,
				"username":     user.Username,
				"email":        user.Email,
				"personaID":    user.PersonaID,
				"role":         user.Role,
				"departmentID": user.DepartmentID,
				"attributes":   string(attributesJSON),
				"updatedAt":    time.Now().Format(time.RFC3339),
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, sentinel_errors.ErrDatabaseOperation
		}

		if result.Next() {
			return result.Record().Values[0], nil
		}

		return nil, sentinel_errors.ErrUserNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to update user",
			zap.Error(err),
			zap.String("userID", user.ID),
			zap.Duration("duration", duration))
		return nil, err
	}

	updatedUser, err := dao.GetUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("User updated successfully",
		zap.String("userID", user.ID),
		zap.Duration("duration", duration))

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUserID(ctx),
		Action:        "UPDATE_USER",
		Resource:      "users." + user.ID,
		AccessGranted: true,
		ChangeDetails: createUserChangeDetails(oldUser, updatedUser),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return updatedUser, nil
}

func (dao *UserDAO) DeleteUser(ctx context.Context, userID string) error {
	start := time.Now()
	logger.Info("Deleting user", zap.String("userID", userID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:User {id: $id})
        DETACH DELETE u
        `
		_, err := transaction.Run(query, map[string]interface{}{"id": userID})
		if err != nil {
			return nil, sentinel_errors.ErrDatabaseOperation
		}
		return nil, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to delete user",
			zap.Error(err),
			zap.String("userID", userID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("User deleted successfully",
		zap.String("userID", userID),
		zap.Duration("duration", duration))

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUserID(ctx),
		Action:        "DELETE_USER",
		Resource:      "users." + userID,
		AccessGranted: true,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *UserDAO) GetUser(ctx context.Context, userID string) (*model.User, error) {
	start := time.Now()

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:User {id: $id})
    RETURN u
    `
	result, err := session.Run(query, map[string]interface{}{"id": userID})
	if err != nil {
		logger.Error("Failed to execute get user query",
			zap.Error(err),
			zap.String("userID", userID),
			zap.Duration("duration", time.Since(start)))
		return nil, sentinel_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		user, err := mapNodeToUser(node)
		if err != nil {
			logger.Error("Failed to map user node to struct",
				zap.Error(err),
				zap.String("userID", userID),
				zap.Duration("duration", time.Since(start)))
			return nil, sentinel_errors.ErrInternalServer
		}
		return user, nil
	}

	logger.Warn("User not found",
		zap.String("userID", userID),
		zap.Duration("duration", time.Since(start)))
	return nil, sentinel_errors.ErrUserNotFound
}

func (dao *UserDAO) ListUsers(ctx context.Context, limit int, offset int) ([]*model.User, error) {
	start := time.Now()

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:User)
    RETURN u
    ORDER BY u.createdAt DESC
    SKIP $offset
    LIMIT $limit
    `
	result, err := session.Run(query, map[string]interface{}{
		"limit":  limit,
		"offset": offset,
	})
	if err != nil {
		logger.Error("Failed to execute list users query",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, sentinel_errors.ErrDatabaseOperation
	}

	var users []*model.User
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		user, err := mapNodeToUser(node)
		if err != nil {
			logger.Error("Failed to map user node to struct",
				zap.Error(err),
				zap.Duration("duration", time.Since(start)))
			return nil, sentinel_errors.ErrInternalServer
		}
		users = append(users, user)
	}

	return users, nil
}

// ListUserIDsByPersona returns the IDs of every user assigned to a persona.
func (dao *UserDAO) ListUserIDsByPersona(ctx context.Context, personaID string) ([]string, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:User {personaID: $personaID})
    RETURN u.id as id
    `
	result, err := session.Run(query, map[string]interface{}{"personaID": personaID})
	if err != nil {
		logger.Error("Failed to list users by persona",
			zap.Error(err),
			zap.String("personaID", personaID))
		return nil, sentinel_errors.ErrDatabaseOperation
	}

	var ids []string
	for result.Next() {
		if id, ok := result.Record().Values[0].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Helper function to map Neo4j Node to User struct
func mapNodeToUser(node neo4j.Node) (*model.User, error) {
	props := node.Props
	user := &model.User{
		ID:           stringProp(props, "id"),
		Name:         stringProp(props, "name"),
		Username:     stringProp(props, "username"),
		Email:        stringProp(props, "email"),
		PersonaID:    stringProp(props, "personaID"),
		Role:         stringProp(props, "role"),
		DepartmentID: stringProp(props, "departmentID"),
	}

	if attributesJSON := stringProp(props, "attributes"); attributesJSON != "" {
		if err := json.Unmarshal([]byte(attributesJSON), &user.Attributes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user attributes: %w", err)
		}
	}

	user.CreatedAt = helper_util.TimeProp(props, "createdAt")
	user.UpdatedAt = helper_util.TimeProp(props, "updatedAt")

	return user, nil
}

func stringProp(props map[string]interface{}, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

// requestingUserID pulls the acting user's ID out of the request context
// for the audit trail; "system" when the mutation is not user-initiated.
func requestingUserID(ctx context.Context) string {
	if id, ok := ctx.Value("requestingUserID").(string); ok && id != "" {
		return id
	}
	return "system"
}

// Helper function to create change details for audit log
func createUserChangeDetails(oldUser, newUser *model.User) json.RawMessage {
	changes := make(map[string]interface{})
	if oldUser == nil {
		changes["action"] = "created"
	} else if newUser == nil {
		changes["action"] = "deleted"
	} else {
		changes["action"] = "updated"
		if oldUser.Username != newUser.Username {
			changes["username"] = map[string]string{"old": oldUser.Username, "new": newUser.Username}
		}
		if oldUser.PersonaID != newUser.PersonaID {
			changes["personaID"] = map[string]string{"old": oldUser.PersonaID, "new": newUser.PersonaID}
		}
		if oldUser.Role != newUser.Role {
			changes["role"] = map[string]string{"old": oldUser.Role, "new": newUser.Role}
		}
	}
	changeDetails, _ := json.Marshal(changes)
	return changeDetails
}
