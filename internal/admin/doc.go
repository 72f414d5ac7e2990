// Package admin provides user management for administrators.
//
// # Operations
//
// All operations require the canManageUsers capability, which only the
// admin role holds:
//
//   - ListUsers: the user registry with blocked flags
//   - BlockUser / UnblockUser: maintain the block list checked at login
//   - SetRole: change a registered user's role
//   - AuditLog: read back recorded mutations
//
// # Command Syntax
//
// ExecCommand accepts the management panel's one-line commands:
//
//	block <userId>
//	unblock <userId>
//	setrole <userId> <role>
//
// # Audit
//
// Every successful mutation appends a store.AuditEntry with target type
// "user". Audit write failures are logged and never fail the operation.
package admin
