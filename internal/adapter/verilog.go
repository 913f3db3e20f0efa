package adapter

import (
	"vflow/internal/vast"
	"vflow/internal/vparse"
)

// VerilogAdapter wraps vparse.Parse to satisfy Adapter.
type VerilogAdapter struct{}

func NewVerilogAdapter() *VerilogAdapter { return &VerilogAdapter{} }

func (VerilogAdapter) Parse(filename, source string) ([]*vast.Module, error) {
	return vparse.Parse(filename, source)
}
