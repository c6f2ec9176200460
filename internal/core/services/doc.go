// Package services implements the driving ports: document intake,
// indexing, retrieval and answering. Services depend only on the driven
// port interfaces, never on a concrete adapter.
package services
