package seeds

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nivobank/backoffice/internal/models"
)

// RBACSeeder seeds roles, permissions, and the bootstrap super-admin
type RBACSeeder struct {
	db *sql.DB
}

// NewRBACSeeder creates a new RBAC seeder
func NewRBACSeeder(db *sql.DB) *RBACSeeder {
	return &RBACSeeder{db: db}
}

// RoleDef is a role definition to seed
type RoleDef struct {
	Name        string
	Description string
}

// PermissionDef is a permission definition to seed
type PermissionDef struct {
	Name        string
	Resource    string
	Action      string
	Description string
}

// RoleGrant maps a role to its permission names
type RoleGrant struct {
	RoleName        string
	PermissionNames []string
}

// DefaultUser is a user created at bootstrap
type DefaultUser struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// GetDefaultRoles returns the closed set of roles the lifecycle guards know
func GetDefaultRoles() []RoleDef {
	return []RoleDef{
		{
			Name:        models.RoleAgent,
			Description: "Agency staff opening and completing onboarding requests",
		},
		{
			Name:        models.RoleBankStaff,
			Description: "Bank back-office reviewing submitted requests",
		},
		{
			Name:        models.RoleCTO,
			Description: "Compliance officer for CTO-gated statuses",
		},
		{
			Name:        models.RoleN1,
			Description: "Level 1 approver for N1-gated statuses",
		},
		{
			Name:        models.RoleN2,
			Description: "Level 2 approver for N2-gated statuses",
		},
		{
			Name:        models.RoleSuperAdmin,
			Description: "Platform operator with cross-bank access",
		},
	}
}

// GetDefaultPermissions returns the default permissions to seed
func GetDefaultPermissions() []PermissionDef {
	return []PermissionDef{
		// Onboarding request permissions
		{"request:create", "request", "create", "Open new onboarding requests"},
		{"request:read", "request", "read", "View onboarding requests"},
		{"request:update", "request", "update", "Edit request payloads and documents"},
		{"request:submit", "request", "submit", "Submit requests for review"},
		{"request:transition", "request", "transition", "Move requests between statuses"},
		{"request:review", "request", "review", "Record field-level review feedback"},

		// Status catalog permissions
		{"status:read", "status", "read", "View the status catalog"},

		// Tenant permissions
		{"tenant:read", "tenant", "read", "View banks and agencies"},
		{"tenant:manage", "tenant", "manage", "Create and deactivate agencies"},

		// Dashboard permissions
		{"stats:read", "stats", "read", "View dashboard statistics"},
	}
}

// GetDefaultRoleGrants returns the default role-permission mappings
func GetDefaultRoleGrants() []RoleGrant {
	reviewer := []string{
		"request:read", "request:transition", "request:review",
		"status:read", "stats:read",
	}

	return []RoleGrant{
		{
			RoleName: models.RoleAgent,
			PermissionNames: []string{
				"request:create", "request:read", "request:update", "request:submit",
				"status:read",
			},
		},
		{
			RoleName: models.RoleBankStaff,
			PermissionNames: append([]string{
				"tenant:read", "tenant:manage",
			}, reviewer...),
		},
		{RoleName: models.RoleCTO, PermissionNames: reviewer},
		{RoleName: models.RoleN1, PermissionNames: reviewer},
		{RoleName: models.RoleN2, PermissionNames: reviewer},
		{
			RoleName: models.RoleSuperAdmin,
			// Super-admin gets all permissions (assigned via cross join)
			PermissionNames: []string{},
		},
	}
}

// GetDefaultUsers returns the bootstrap users (only the platform operator)
func GetDefaultUsers() []DefaultUser {
	return []DefaultUser{
		{
			Username:  "admin",
			Email:     "admin@example.com",
			Password:  "admin123", // Should be changed on first login
			FirstName: "Platform",
			LastName:  "Operator",
			Role:      models.RoleSuperAdmin,
		},
	}
}

// SeedAll seeds all RBAC data (roles, permissions, grants, and optionally the
// bootstrap user)
func (s *RBACSeeder) SeedAll(ctx context.Context, seedUsers bool) error {
	log.Println("Starting RBAC seeding...")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.seedRoles(ctx, tx); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	if err := s.seedPermissions(ctx, tx); err != nil {
		return fmt.Errorf("failed to seed permissions: %w", err)
	}

	if err := s.seedRoleGrants(ctx, tx); err != nil {
		return fmt.Errorf("failed to seed role-permissions: %w", err)
	}

	if seedUsers {
		if err := s.seedDefaultUsers(ctx, tx); err != nil {
			return fmt.Errorf("failed to seed default users: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Println("RBAC seeding completed successfully!")
	return nil
}

func (s *RBACSeeder) seedRoles(ctx context.Context, tx *sql.Tx) error {
	log.Println("Seeding roles...")

	for _, role := range GetDefaultRoles() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO roles (name, description, created_at, updated_at)
			VALUES ($1, $2, NOW(), NOW())
			ON CONFLICT (name) DO UPDATE
			SET description = EXCLUDED.description,
			    updated_at = NOW()
		`, role.Name, role.Description)

		if err != nil {
			return fmt.Errorf("failed to insert role %s: %w", role.Name, err)
		}
		log.Printf("  ✓ Role: %s", role.Name)
	}

	return nil
}

func (s *RBACSeeder) seedPermissions(ctx context.Context, tx *sql.Tx) error {
	log.Println("Seeding permissions...")

	for _, perm := range GetDefaultPermissions() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO permissions (name, resource, action, description, created_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (name) DO UPDATE
			SET resource = EXCLUDED.resource,
			    action = EXCLUDED.action,
			    description = EXCLUDED.description
		`, perm.Name, perm.Resource, perm.Action, perm.Description)

		if err != nil {
			return fmt.Errorf("failed to insert permission %s: %w", perm.Name, err)
		}
		log.Printf("  ✓ Permission: %s", perm.Name)
	}

	return nil
}

func (s *RBACSeeder) seedRoleGrants(ctx context.Context, tx *sql.Tx) error {
	log.Println("Seeding role-permission mappings...")

	// Super-admin gets every permission
	_, err := tx.ExecContext(ctx, `
		INSERT INTO role_permissions (role_id, permission_id, granted_at)
		SELECT r.id, p.id, NOW()
		FROM roles r
		CROSS JOIN permissions p
		WHERE r.name = $1
		ON CONFLICT (role_id, permission_id) DO NOTHING
	`, models.RoleSuperAdmin)
	if err != nil {
		return fmt.Errorf("failed to assign permissions to super-admin role: %w", err)
	}
	log.Printf("  ✓ %s: all permissions", models.RoleSuperAdmin)

	for _, grant := range GetDefaultRoleGrants() {
		if grant.RoleName == models.RoleSuperAdmin || len(grant.PermissionNames) == 0 {
			continue
		}

		for _, permName := range grant.PermissionNames {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO role_permissions (role_id, permission_id, granted_at)
				SELECT r.id, p.id, NOW()
				FROM roles r
				CROSS JOIN permissions p
				WHERE r.name = $1 AND p.name = $2
				ON CONFLICT (role_id, permission_id) DO NOTHING
			`, grant.RoleName, permName)

			if err != nil {
				return fmt.Errorf("failed to assign permission %s to role %s: %w", permName, grant.RoleName, err)
			}
		}
		log.Printf("  ✓ %s: %d permissions", grant.RoleName, len(grant.PermissionNames))
	}

	return nil
}

func (s *RBACSeeder) seedDefaultUsers(ctx context.Context, tx *sql.Tx) error {
	log.Println("Seeding default users...")

	for _, user := range GetDefaultUsers() {
		var exists bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)
		`, user.Username, user.Email).Scan(&exists)

		if err != nil {
			return fmt.Errorf("failed to check if user exists: %w", err)
		}

		if exists {
			log.Printf("  ⊘ User %s already exists, skipping", user.Username)
			continue
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		// Users hold exactly one role via the role_id column.
		userID := uuid.New()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO users (id, username, email, password_hash, first_name, last_name, role_id, is_active, created_at, updated_at)
			SELECT $1, $2, $3, $4, $5, $6, r.id, true, NOW(), NOW()
			FROM roles r
			WHERE r.name = $7
		`, userID, user.Username, user.Email, string(hashedPassword), user.FirstName, user.LastName, user.Role)

		if err != nil {
			return fmt.Errorf("failed to create user %s: %w", user.Username, err)
		}

		log.Printf("  ✓ User: %s (email: %s, role: %s)", user.Username, user.Email, user.Role)
	}

	return nil
}

// Verify checks that all expected RBAC data exists
func (s *RBACSeeder) Verify(ctx context.Context) error {
	log.Println("Verifying RBAC data...")

	for _, role := range GetDefaultRoles() {
		var exists bool
		err := s.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM roles WHERE name = $1)
		`, role.Name).Scan(&exists)

		if err != nil {
			return fmt.Errorf("failed to check role %s: %w", role.Name, err)
		}

		if !exists {
			return fmt.Errorf("role %s does not exist", role.Name)
		}
		log.Printf("  ✓ Role: %s", role.Name)
	}

	for _, perm := range GetDefaultPermissions() {
		var exists bool
		err := s.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM permissions WHERE name = $1)
		`, perm.Name).Scan(&exists)

		if err != nil {
			return fmt.Errorf("failed to check permission %s: %w", perm.Name, err)
		}

		if !exists {
			return fmt.Errorf("permission %s does not exist", perm.Name)
		}
		log.Printf("  ✓ Permission: %s", perm.Name)
	}

	for _, grant := range GetDefaultRoleGrants() {
		var count int
		err := s.db.QueryRowContext(ctx, `
			SELECT COUNT(*)
			FROM role_permissions rp
			JOIN roles r ON r.id = rp.role_id
			WHERE r.name = $1
		`, grant.RoleName).Scan(&count)

		if err != nil {
			return fmt.Errorf("failed to check permissions for role %s: %w", grant.RoleName, err)
		}

		expected := len(grant.PermissionNames)
		if grant.RoleName == models.RoleSuperAdmin {
			expected = len(GetDefaultPermissions())
		}
		if count < expected {
			return fmt.Errorf("role %s has %d permissions, expected %d", grant.RoleName, count, expected)
		}
		log.Printf("  ✓ %s: %d permissions", grant.RoleName, count)
	}

	log.Println("✓ RBAC verification completed successfully!")
	return nil
}
