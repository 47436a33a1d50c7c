package config

import "fmt"

// MissingConfigurationError names a required setting that is not set.
type MissingConfigurationError struct {
	Setting string
	Env     string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: %s (set %s)", e.Setting, e.Env)
}

// Validate reports the first missing connection setting.
func (n Neo4j) Validate() error {
	switch {
	case n.Database == "":
		return &MissingConfigurationError{Setting: "neo4j -> database", Env: "NEO4J_DATABASE"}
	case n.URI == "":
		return &MissingConfigurationError{Setting: "neo4j -> uri", Env: "NEO4J_URI"}
	case n.User == "":
		return &MissingConfigurationError{Setting: "neo4j -> user", Env: "NEO4J_USER"}
	case n.Password == "":
		return &MissingConfigurationError{Setting: "neo4j -> password", Env: "NEO4J_PASSWORD"}
	}
	return nil
}
