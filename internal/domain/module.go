package domain

import "fmt"

// Module identifies the running edge module. Every signing request is scoped
// to a module and its generation.
//
// Immutable after construction - all fields are unexported and read-only via accessors.
type Module struct {
	hubHostName  string // IoT hub host the token is issued for
	deviceID     string
	moduleID     string
	generationID string
}

// NewModuleValidated creates a module identity.
//
// Validations:
//   - hubHostName, deviceID, moduleID and generationID must not be empty
//
// Returns ErrModuleInvalid if validation fails.
func NewModuleValidated(hubHostName, deviceID, moduleID, generationID string) (*Module, error) {
	m := &Module{
		hubHostName:  hubHostName,
		deviceID:     deviceID,
		moduleID:     moduleID,
		generationID: generationID,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// MustNewModule creates a module or panics on validation error.
// Convenient for tests and scenarios where invalid input is a programming error.
//
// Example:
//
//	m := domain.MustNewModule("hub.azure-devices.net", "edge-1", "filter", "gen1")
func MustNewModule(hubHostName, deviceID, moduleID, generationID string) *Module {
	m, err := NewModuleValidated(hubHostName, deviceID, moduleID, generationID)
	if err != nil {
		panic(err)
	}
	return m
}

// Validate checks basic invariants.
// Returns ErrModuleInvalid if any check fails.
func (m *Module) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil module", ErrModuleInvalid)
	}
	if m.hubHostName == "" {
		return fmt.Errorf("%w: hub host name cannot be empty", ErrModuleInvalid)
	}
	if m.deviceID == "" {
		return fmt.Errorf("%w: device id cannot be empty", ErrModuleInvalid)
	}
	if m.moduleID == "" {
		return fmt.Errorf("%w: module id cannot be empty", ErrModuleInvalid)
	}
	if m.generationID == "" {
		return fmt.Errorf("%w: generation id cannot be empty", ErrModuleInvalid)
	}
	return nil
}

// Audience returns the SAS token audience for this module.
func (m *Module) Audience() string {
	return BuildAudience(m.hubHostName, m.deviceID, m.moduleID)
}

// String returns a string representation suitable for logging.
// Safe on nil receiver.
//
// Format: module{hub="h",device="d",module="m",generation="g"}
func (m *Module) String() string {
	if m == nil {
		return "module<nil>"
	}
	return fmt.Sprintf("module{hub=%q,device=%q,module=%q,generation=%q}",
		m.hubHostName, m.deviceID, m.moduleID, m.generationID)
}

// HubHostName returns the IoT hub host name.
func (m *Module) HubHostName() string { return m.hubHostName }

// DeviceID returns the device identifier.
func (m *Module) DeviceID() string { return m.deviceID }

// ModuleID returns the module identifier.
func (m *Module) ModuleID() string { return m.moduleID }

// GenerationID returns the module generation identifier.
func (m *Module) GenerationID() string { return m.generationID }
