package domain

// KeyPrefix namespaces every key helpmap writes to the shared store.
const KeyPrefix = "helpmap:"
