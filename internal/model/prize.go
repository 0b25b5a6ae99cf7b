package model

type Prize struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Cost      int    `json:"cost"`
	IsBuiltin bool   `json:"is_builtin"`
}
