package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Combat and targeting errors

// UnwinnableError indicates the simulator found no gear set that beats a monster.
// Executors translate it into a rotation signal, never a crash.
type UnwinnableError struct {
	*DomainError
	MonsterCode string
}

func NewUnwinnableError(monsterCode string) *UnwinnableError {
	return &UnwinnableError{
		DomainError: &DomainError{Message: fmt.Sprintf("no winning loadout against %s", monsterCode)},
		MonsterCode: monsterCode,
	}
}

// Movement errors

// NoPathError indicates the server could not route the character to a map
// location. The destination (content type, code) is blacklisted process-wide.
type NoPathError struct {
	*DomainError
	ContentType string
	ContentCode string
}

func NewNoPathError(contentType, contentCode string) *NoPathError {
	return &NoPathError{
		DomainError: &DomainError{Message: fmt.Sprintf("no path to %s %s", contentType, contentCode)},
		ContentType: contentType,
		ContentCode: contentCode,
	}
}

// Item use errors, mapped from game API codes 476 and 478.
// Both are caught inline by executors and turned into local decisions.

type NotConsumableError struct {
	*DomainError
	ItemCode string
}

func NewNotConsumableError(itemCode string) *NotConsumableError {
	return &NotConsumableError{
		DomainError: &DomainError{Message: fmt.Sprintf("item %s is not consumable", itemCode)},
		ItemCode:    itemCode,
	}
}

type MissingTradeItemsError struct {
	*DomainError
	ItemCode string
	Quantity int
}

func NewMissingTradeItemsError(itemCode string, quantity int) *MissingTradeItemsError {
	return &MissingTradeItemsError{
		DomainError: &DomainError{Message: fmt.Sprintf("missing %d %s for trade", quantity, itemCode)},
		ItemCode:    itemCode,
		Quantity:    quantity,
	}
}

// Inventory errors

type InventoryFullError struct {
	*DomainError
}

func NewInventoryFullError() *InventoryFullError {
	return &InventoryFullError{DomainError: &DomainError{Message: "inventory is full"}}
}

// Recipe errors

// RecipeCycleError indicates a craft recipe's material chain refers back to
// itself. Such recipes are rejected during production-plan resolution.
type RecipeCycleError struct {
	*DomainError
	RecipeCode string
}

func NewRecipeCycleError(recipeCode string) *RecipeCycleError {
	return &RecipeCycleError{
		DomainError: &DomainError{Message: fmt.Sprintf("recipe %s has a cyclic material chain", recipeCode)},
		RecipeCode:  recipeCode,
	}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Persistence errors

// StateVersionError indicates a persisted state file carries a version the
// daemon does not know how to migrate. This is an invariant violation and
// surfaces as a hard failure.
type StateVersionError struct {
	*DomainError
	Version int
}

func NewStateVersionError(version int) *StateVersionError {
	return &StateVersionError{
		DomainError: &DomainError{Message: fmt.Sprintf("unknown gear state file version %d", version)},
		Version:     version,
	}
}
