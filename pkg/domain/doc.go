/*
Package domain contains the core domain models of letluck.

It defines the category tree (Nodes and Items), the navigation state owned by a
session and the view handed to renderers. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Node: A point in a category tree. Either a Branch (has children) or a Leaf (has a pool).
  - Item: A concrete choosable entry inside a leaf pool.
  - NavigationState: The snapshot of where a session is and what luck picked.
  - View: A structural representation of what the host should render.
*/
package domain
