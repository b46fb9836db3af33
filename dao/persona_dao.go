// api/dao/persona_dao.go
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

type PersonaDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewPersonaDAO(driver neo4j.Driver, auditService audit.Service) *PersonaDAO {
	dao := &PersonaDAO{Driver: driver, AuditService: auditService}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Persona", zap.Error(err))
	}
	return dao
}

func (dao *PersonaDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_persona_id IF NOT EXISTS
        FOR (p:Persona) REQUIRE p.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on Persona ID", zap.Error(err))
		return err
	}

	return nil
}

func (dao *PersonaDAO) CreatePersona(ctx context.Context, persona model.Persona) (string, error) {
	start := time.Now()
	logger.Info("Creating new persona", zap.String("personaName", persona.Name))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if persona.ID == "" {
		persona.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (p:Persona {id: $id})
        ON CREATE SET p += $props
        ON MATCH SET p += $props
        RETURN p.id as id
        `

		permissionsJSON, _ := json.Marshal(persona.Permissions)

		params := map[string]interface{}{
			"id": persona.ID,
			"props": map[string]interface{}{
				"name":        persona.Name,
				"description": persona.Description,
				"permissions": string(permissionsJSON),
				"createdAt":   time.Now().Format(time.RFC3339),
				"updatedAt":   time.Now().Format(time.RFC3339),
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
		logger.Error("Failed to create persona",
			zap.Error(err),
			zap.String("personaName", persona.Name),
			zap.Duration("duration", duration))
		return "", err
	}

	personaID := fmt.Sprintf("%v", result)
	logger.Info("Persona created successfully",
		zap.String("personaID", personaID),
		zap.Duration("duration", duration))

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUserID(ctx),
		Action:        "CREATE_PERSONA",
		Resource:      "personas." + personaID,
		AccessGranted: true,
		ChangeDetails: createPersonaChangeDetails(nil, &persona),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return personaID, nil
}

func (dao *PersonaDAO) UpdatePersona(ctx context.Context, persona model.Persona) (*model.Persona, error) {
	start := time.Now()
	logger.Info("Updating persona", zap.String("personaID", persona.ID))

	oldPersona, err := dao.GetPersona(ctx, persona.ID)
	if err != nil {
		return nil, err
	}

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err = session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (p:Persona {id: $id})
        SET p += $props
        RETURN p.id as id
        `

		permissionsJSON, _ := json.Marshal(persona.Permissions)

		params := map[string]interface{}{
			"id": persona.ID,
			"props": map[string]interface{}{
				"name":        persona.Name,
				"description": persona.Description,
				"permissions": string(permissionsJSON),
				"updatedAt":   time.Now().Format(time.RFC3339),
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, sentinel_errors.ErrDatabaseOperation
		}

		if result.Next() {
			return result.Record().Values[0], nil
		}

		return nil, sentinel_errors.ErrPersonaNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to update persona",
			zap.Error(err),
			zap.String("personaID", persona.ID),
			zap.Duration("duration", duration))
		return nil, err
	}

	updatedPersona, err := dao.GetPersona(ctx, persona.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("Persona updated successfully",
		zap.String("personaID", persona.ID),
		zap.Duration("duration", duration))

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUserID(ctx),
		Action:        "UPDATE_PERSONA",
		Resource:      "personas." + persona.ID,
		AccessGranted: true,
		ChangeDetails: createPersonaChangeDetails(oldPersona, updatedPersona),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return updatedPersona, nil
}

func (dao *PersonaDAO) DeletePersona(ctx context.Context, personaID string) error {
	start := time.Now()
	logger.Info("Deleting persona", zap.String("personaID", personaID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (p:Persona {id: $id})
        DETACH DELETE p
        `
		_, err := transaction.Run(query, map[string]interface{}{"id": personaID})
		if err != nil {
			return nil, sentinel_errors.ErrDatabaseOperation
		}
		return nil, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to delete persona",
			zap.Error(err),
			zap.String("personaID", personaID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Persona deleted successfully",
		zap.String("personaID", personaID),
		zap.Duration("duration", duration))

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUserID(ctx),
		Action:        "DELETE_PERSONA",
		Resource:      "personas." + personaID,
		AccessGranted: true,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *PersonaDAO) GetPersona(ctx context.Context, personaID string) (*model.Persona, error) {
	start := time.Now()

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (p:Persona {id: $id})
    RETURN p
    `
	result, err := session.Run(query, map[string]interface{}{"id": personaID})
	if err != nil {
		logger.Error("Failed to execute get persona query",
			zap.Error(err),
			zap.String("personaID", personaID),
			zap.Duration("duration", time.Since(start)))
		return nil, sentinel_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		persona, err := mapNodeToPersona(node)
		if err != nil {
			logger.Error("Failed to map persona node to struct",
				zap.Error(err),
				zap.String("personaID", personaID),
				zap.Duration("duration", time.Since(start)))
			return nil, sentinel_errors.ErrInternalServer
		}
		return persona, nil
	}

	logger.Warn("Persona not found",
		zap.String("personaID", personaID),
		zap.Duration("duration", time.Since(start)))
	return nil, sentinel_errors.ErrPersonaNotFound
}

// GetPersonaPermissions returns the persona's declared permission entries
// still in raw form; normalization happens in the rbac package.
func (dao *PersonaDAO) GetPersonaPermissions(ctx context.Context, personaID string) ([]model.RawPermission, error) {
	persona, err := dao.GetPersona(ctx, personaID)
	if err != nil {
		return nil, err
	}
	return persona.Permissions, nil
}

func (dao *PersonaDAO) ListPersonas(ctx context.Context, limit int, offset int) ([]*model.Persona, error) {
	start := time.Now()

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (p:Persona)
    RETURN p
    ORDER BY p.createdAt DESC
    SKIP $offset
    LIMIT $limit
    `
	result, err := session.Run(query, map[string]interface{}{
		"limit":  limit,
		"offset": offset,
	})
	if err != nil {
		logger.Error("Failed to execute list personas query",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, sentinel_errors.ErrDatabaseOperation
	}

	var personas []*model.Persona
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		persona, err := mapNodeToPersona(node)
		if err != nil {
			logger.Error("Failed to map persona node to struct",
				zap.Error(err),
				zap.Duration("duration", time.Since(start)))
			return nil, sentinel_errors.ErrInternalServer
		}
		personas = append(personas, persona)
	}

	return personas, nil
}

// Helper function to map Neo4j Node to Persona struct
func mapNodeToPersona(node neo4j.Node) (*model.Persona, error) {
	props := node.Props
	persona := &model.Persona{
		ID:          stringProp(props, "id"),
		Name:        stringProp(props, "name"),
		Description: stringProp(props, "description"),
	}

	if permissionsJSON := stringProp(props, "permissions"); permissionsJSON != "" {
		if err := json.Unmarshal([]byte(permissionsJSON), &persona.Permissions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal persona permissions: %w", err)
		}
	}

	persona.CreatedAt = helper_util.TimeProp(props, "createdAt")
	persona.UpdatedAt = helper_util.TimeProp(props, "updatedAt")

	return persona, nil
}

// Helper function to create change details for audit log
func createPersonaChangeDetails(oldPersona, newPersona *model.Persona) json.RawMessage {
	changes := make(map[string]interface{})
	if oldPersona == nil {
		changes["action"] = "created"
	} else if newPersona == nil {
		changes["action"] = "deleted"
	} else {
		changes["action"] = "updated"
		if oldPersona.Name != newPersona.Name {
			changes["name"] = map[string]string{"old": oldPersona.Name, "new": newPersona.Name}
		}
		oldPerms, _ := json.Marshal(oldPersona.Permissions)
		newPerms, _ := json.Marshal(newPersona.Permissions)
		if string(oldPerms) != string(newPerms) {
			changes["permissions"] = map[string]string{"old": string(oldPerms), "new": string(newPerms)}
		}
	}
	changeDetails, _ := json.Marshal(changes)
	return changeDetails
}
