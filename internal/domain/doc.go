// Package domain contains the core business entities of the portal: users,
// their wallets and money movements, investments, savings goals, rewards,
// notifications and assistant chat history.
//
// Entities are created through NewX constructors, which assign a UUID and UTC
// timestamps and validate the result. Monetary amounts use decimal.Decimal
// and are never represented as floats.
package domain
