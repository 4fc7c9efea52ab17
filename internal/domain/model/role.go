package model

import "encoding/json"

// Permission names consumed by the route gates.
const (
	PermManageUsers = "manageUsers"
	PermInsertPet   = "insertPet"
	PermUpdatePet   = "updatePet"
	PermDeletePet   = "deletePet"
)

// Role bundles a named permission table. A permission absent from the map
// means denied.
type Role struct {
	Name        string          `json:"name"`
	Permissions map[string]bool `json:"permissions"`
}

// RoleList accepts either a single role name or an array of names on the
// wire and always carries the normalized array form.
type RoleList []string

func (r *RoleList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*r = RoleList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*r = RoleList(many)
	return nil
}
