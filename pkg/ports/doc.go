/*
Package ports defines the interfaces between the bridge and the hosting application.

# Key Interfaces

  - DescriptionProvider: yields the API operations, grouped by API version.
  - ToolRegistrar: accepts the generated tool set in one batch.
*/
package ports
